package bar

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/jlesster/status-bar/internal/producer"
	"github.com/jlesster/status-bar/internal/render"
	"github.com/jlesster/status-bar/internal/screen"
)

// Manager keeps one session per (bar, screen) pair and rebuilds all of them
// whenever the screen configuration changes. Geometry is interdependent
// across the three regions, so nothing is repositioned incrementally.
type Manager struct {
	reg     *producer.Registry
	backend render.Backend
	defs    []Definition
	opts    Options
	logger  *slog.Logger

	mu       sync.RWMutex
	screens  []screen.Screen
	sessions []*Session
}

// NewManager creates a manager for the given bar definitions.
func NewManager(reg *producer.Registry, backend render.Backend, defs []Definition, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{reg: reg, backend: backend, defs: defs, opts: opts, logger: logger}
}

// Apply stops every running session and starts the bars for screens. A
// layout or configuration error stops everything and is returned.
func (m *Manager) Apply(ctx context.Context, screens []screen.Screen) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.screens = screens

	for _, s := range screens {
		for _, def := range m.defs {
			if !def.AppliesTo(s) {
				continue
			}
			sess, err := Start(ctx, m.reg, m.backend, s, def, m.opts, m.logger)
			if err != nil {
				m.stopLocked()
				return err
			}
			m.sessions = append(m.sessions, sess)
		}
	}
	if len(screens) == 0 {
		m.logger.Warn("no screens found, waiting for the next poll")
	}
	return nil
}

// Run applies every screen change reported by w until ctx is cancelled or a
// change cannot be applied. All sessions are stopped before Run returns.
func (m *Manager) Run(ctx context.Context, w *screen.Watcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var applyErr error
	w.Run(ctx, func(screens []screen.Screen) {
		if err := m.Apply(ctx, screens); err != nil {
			applyErr = err
			cancel()
		}
	})

	m.Stop()
	return applyErr
}

// Stop stops every session.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	for _, s := range m.sessions {
		s.Stop()
	}
	m.sessions = nil
}

// Screens returns the screen list the current sessions were built for.
func (m *Manager) Screens() []screen.Screen {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]screen.Screen, len(m.screens))
	copy(out, m.screens)
	return out
}

// Sessions returns the running sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}
