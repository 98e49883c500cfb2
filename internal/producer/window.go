package producer

import (
	"context"
	"fmt"

	"github.com/jlesster/status-bar/internal/wm"
)

// WindowManager is the event source behind the window and workspaces
// segments. *wm.Client satisfies it.
type WindowManager interface {
	State() (wm.State, error)
	Subscribe() (<-chan wm.Event, func())
}

// Window mirrors wm.State for the segments.
type Window struct {
	Title      string
	Workspace  int
	Workspaces []int
}

// WindowProducer re-queries the window manager after every event that can
// change the focused window or the workspace list.
type WindowProducer struct {
	manager     WindowManager
	events      <-chan wm.Event
	unsubscribe func()
	last        Window
}

// NewWindow creates a window producer. A nil manager means the session has
// no supported window manager and the producer is absent.
func NewWindow(manager WindowManager) *WindowProducer {
	p := &WindowProducer{manager: manager}
	if manager != nil {
		p.events, p.unsubscribe = manager.Subscribe()
	}
	return p
}

func (p *WindowProducer) Name() string { return "window" }

func (p *WindowProducer) Initial() Window {
	if p.manager == nil {
		return Window{}
	}
	w, err := p.sample()
	if err != nil {
		return Window{}
	}
	return w
}

func (p *WindowProducer) Produce(ctx context.Context) (Window, error) {
	if p.manager == nil {
		return Window{}, fmt.Errorf("window manager: %w", ErrAbsent)
	}
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				return p.last, fmt.Errorf("window manager events closed: %w", ErrAbsent)
			}
			if !wm.Relevant(ev) {
				continue
			}
			return p.sample()
		case <-ctx.Done():
			p.unsubscribe()
			return Window{}, ctx.Err()
		}
	}
}

func (p *WindowProducer) sample() (Window, error) {
	s, err := p.manager.State()
	if err != nil {
		return Window{}, fmt.Errorf("query window manager: %w", err)
	}
	p.last = Window{Title: s.Title, Workspace: s.Workspace, Workspaces: s.Workspaces}
	return p.last, nil
}
