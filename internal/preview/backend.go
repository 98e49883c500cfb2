package preview

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/render"
	"github.com/jlesster/status-bar/internal/screen"
)

// Sender delivers messages to a running program. *tea.Program implements
// it and is safe to call from any goroutine.
type Sender interface {
	Send(msg tea.Msg)
}

// Backend is a render.Backend whose targets forward their lines to the
// preview program instead of dzen2.
type Backend struct {
	send Sender

	mu   sync.Mutex
	next int
}

// NewBackend creates a backend that sends to s.
func NewBackend(s Sender) *Backend {
	return &Backend{send: s}
}

func (b *Backend) Open(_ context.Context, g render.Geometry) (render.Target, error) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.mu.Unlock()
	return &target{id: id, geom: g, send: b.send}, nil
}

// Watch wraps src so that every enumeration is also shown in the preview.
func (b *Backend) Watch(src screen.Enumerator) screen.Enumerator {
	return watched{src: src, send: b.send}
}

type watched struct {
	src  screen.Enumerator
	send Sender
}

func (w watched) Screens(ctx context.Context) ([]screen.Screen, error) {
	screens, err := w.src.Screens(ctx)
	if err != nil {
		return nil, err
	}
	w.send.Send(ScreensMsg{Screens: screens})
	return screens, nil
}

var errClosed = errors.New("preview target closed")

type target struct {
	id   int
	geom render.Geometry
	send Sender

	mu     sync.Mutex
	closed bool
}

func (t *target) Draw(l markup.Line) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errClosed
	}
	t.send.Send(DrawMsg{ID: t.id, Geometry: t.geom, Line: l})
	return nil
}

func (t *target) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		t.send.Send(CloseMsg{ID: t.id})
	}
	return nil
}
