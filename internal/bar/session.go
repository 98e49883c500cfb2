// Package bar binds segment layouts to screens and keeps them drawn.
package bar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jlesster/status-bar/internal/layout"
	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/producer"
	"github.com/jlesster/status-bar/internal/render"
	"github.com/jlesster/status-bar/internal/screen"
	"github.com/jlesster/status-bar/internal/segment"
)

// Entry is a spacer when Segment.Kind is empty, a segment otherwise.
type Entry struct {
	Space   int
	Segment segment.Config
}

// IsSpacer reports whether e is a spacer.
func (e Entry) IsSpacer() bool { return e.Segment.Kind == "" }

// Definition is what one bar shows. It is a plain value: the same definition
// is started once per screen it applies to.
type Definition struct {
	// Screen restricts the bar to the screen with this id; nil means every
	// screen.
	Screen *int
	Left   []Entry
	Center []Entry
	Right  []Entry
}

// AppliesTo reports whether the bar should run on s.
func (d Definition) AppliesTo(s screen.Screen) bool {
	return d.Screen == nil || *d.Screen == s.ID
}

// Options are the settings shared by every bar.
type Options struct {
	Metrics segment.Metrics
	Gaps    layout.Gaps
}

// Session is one bar running on one screen.
type Session struct {
	screen screen.Screen
	slots  []Slot

	cancel   context.CancelFunc
	group    *errgroup.Group
	stopOnce sync.Once
	logger   *slog.Logger
}

// Slot is a placed segment of a running session.
type Slot struct {
	Segment *segment.Segment
	layout.Placed
}

// Plan builds the segments of def and places them on s without starting
// anything.
func Plan(reg *producer.Registry, s screen.Screen, def Definition, opts Options) ([]Slot, error) {
	metrics := opts.Metrics
	if metrics.Cores <= 0 && needsCores(def) {
		metrics.Cores = len(reg.CPU().Now().Cores)
		if metrics.Cores == 0 {
			metrics.Cores = runtime.NumCPU()
		}
	}

	var regions layout.Regions
	var segs [3][]*segment.Segment
	for i, entries := range [][]Entry{def.Left, def.Center, def.Right} {
		var out []layout.Entry
		for _, e := range entries {
			if e.IsSpacer() {
				out = append(out, layout.Spacer(e.Space))
				continue
			}
			seg, err := segment.Build(e.Segment, metrics)
			if err != nil {
				return nil, err
			}
			segs[i] = append(segs[i], seg)
			out = append(out, layout.Segment(seg.Width()))
		}
		switch layout.Region(i) {
		case layout.Left:
			regions.Left = out
		case layout.Center:
			regions.Center = out
		case layout.Right:
			regions.Right = out
		}
	}

	placed, err := layout.Compose(s.X, s.Width, regions, opts.Gaps)
	if err != nil {
		return nil, fmt.Errorf("screen %d: %w", s.ID, err)
	}

	slots := make([]Slot, 0, len(placed))
	for _, p := range placed {
		slots = append(slots, Slot{Segment: segs[p.Region][p.Index], Placed: p})
	}
	return slots, nil
}

func needsCores(def Definition) bool {
	for _, entries := range [][]Entry{def.Left, def.Center, def.Right} {
		for _, e := range entries {
			if e.Segment.Kind == segment.CPU && e.Segment.PerCore {
				return true
			}
		}
	}
	return false
}

// Start plans def on s and starts one render target per segment. Segments
// whose targets keep failing are dropped with a warning; the rest of the bar
// keeps running.
func Start(ctx context.Context, reg *producer.Registry, backend render.Backend,
	s screen.Screen, def Definition, opts Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("screen", s.ID)

	slots, err := Plan(reg, s, def, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	sess := &Session{screen: s, slots: slots, cancel: cancel, group: group, logger: logger}

	for _, slot := range slots {
		slot := slot
		geom := render.Geometry{
			X:      slot.X,
			Y:      s.Y,
			Width:  slot.Allocated(),
			Height: opts.Metrics.Height,
		}
		segLogger := logger.With("segment", string(slot.Segment.Kind()), "region", slot.Region.String())

		group.Go(func() error {
			err := render.Keep(ctx, backend, geom, segLogger, func(ctx context.Context, draw func(markup.Line) error) error {
				return slot.Segment.Run(ctx, reg, func(l markup.Line) error {
					return draw(markup.Pad(slot.Lead, l, slot.Trail))
				})
			})
			if err != nil {
				segLogger.Warn("segment dropped from bar", "error", err)
			}
			return nil
		})
	}

	logger.Info("bar started", "segments", len(slots), "x", s.X, "width", s.Width)
	return sess, nil
}

// Screen returns the screen the session runs on.
func (s *Session) Screen() screen.Screen { return s.screen }

// Slots returns the placed segments.
func (s *Session) Slots() []Slot { return s.slots }

// Stop cancels every segment of the session and waits until their render
// targets are closed. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.group.Wait()
		s.logger.Info("bar stopped")
	})
}
