package segment

import (
	"context"
	"time"

	"github.com/jlesster/status-bar/internal/cell"
	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/producer"
)

// DrawFunc hands one rendered line to the backend.
type DrawFunc func(markup.Line) error

// Run draws the current value of the segment's cell, then redraws after every
// newer value until ctx is cancelled or draw fails. The producer behind the
// cell keeps running after Run returns.
func (s *Segment) Run(ctx context.Context, reg *producer.Registry, draw DrawFunc) error {
	switch s.cfg.Kind {
	case CPU:
		return follow(ctx, reg.CPU(), s.renderCPU, draw)
	case Memory:
		return follow(ctx, reg.Memory(), s.renderMemory, draw)
	case Network:
		return follow(ctx, reg.Network(), s.renderNetwork, draw)
	case Battery:
		return follow(ctx, reg.Battery(), s.renderBattery, draw)
	case Temp:
		return follow(ctx, reg.Temperature(), s.renderTemp, draw)
	case Clock:
		return follow[time.Time](ctx, reg.Clock(), s.renderClock, draw)
	case Stdin:
		return follow(ctx, reg.Lines(), s.renderLine, draw)
	case Brightness:
		return follow(ctx, reg.Brightness(), s.renderBrightness, draw)
	case Disk:
		return follow(ctx, reg.Disk(s.cfg.Path), s.renderDisk, draw)
	case Window:
		return follow(ctx, reg.Window(), s.renderWindow, draw)
	case Workspaces:
		return follow(ctx, reg.Window(), s.renderWorkspaces, draw)
	case Volume:
		return follow(ctx, reg.Volume(s.cfg.Card, s.cfg.Channel), s.renderVolume, draw)
	}

	// Static segments draw once.
	if err := draw(s.Render(nil)); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

// follow renders every version of c newer than the last one drawn. A slow
// draw skips intermediate versions and never goes back to an older one.
func follow[T any](ctx context.Context, c *cell.Cell[T], render func(T) markup.Line, draw DrawFunc) error {
	v, seen := c.Snapshot()
	for {
		if err := draw(render(v)); err != nil {
			return err
		}
		var err error
		v, seen, err = c.Next(ctx, seen)
		if err != nil {
			return err
		}
	}
}
