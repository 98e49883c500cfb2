// Package render hands rendered segments to whatever draws them on screen.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	sberrors "github.com/jlesster/status-bar/internal/errors"
	"github.com/jlesster/status-bar/internal/markup"
)

// MaxRestarts is how many times a failing target is reopened before its
// segment is dropped.
const MaxRestarts = 3

// Geometry is the absolute screen rectangle of one segment.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Target draws the lines of one segment.
type Target interface {
	Draw(markup.Line) error
	Close() error
}

// Backend opens targets.
type Backend interface {
	Open(ctx context.Context, g Geometry) (Target, error)
}

// ErrDropped reports a segment given up after repeated target failures.
var ErrDropped = errors.New("segment dropped")

// Keep opens a target at g and runs fn with its Draw method. When the target
// fails it is closed and reopened, up to MaxRestarts times in a row; a
// target that draws successfully resets the count. Keep returns nil once ctx
// is cancelled and an error wrapping ErrDropped when it gives up.
func Keep(ctx context.Context, b Backend, g Geometry, logger *slog.Logger,
	fn func(ctx context.Context, draw func(markup.Line) error) error) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	failures := 0
	var last error
	for failures <= MaxRestarts {
		if ctx.Err() != nil {
			return nil
		}

		t, err := b.Open(ctx, g)
		if err != nil {
			failures++
			last = err
			logger.Warn("opening render target failed", "error", err, "attempt", failures)
			continue
		}

		drew := false
		err = fn(ctx, func(l markup.Line) error {
			if err := t.Draw(l); err != nil {
				return err
			}
			drew = true
			return nil
		})
		t.Close()

		if ctx.Err() != nil {
			return nil
		}
		if drew {
			failures = 0
		}
		failures++
		last = err
		logger.Warn("render target failed", "error", err, "attempt", failures)
	}

	logger.Warn("dropping segment after repeated render failures", "x", g.X, "width", g.Width, "error", last)
	return sberrors.WrapWithCode(fmt.Errorf("%w: %w", ErrDropped, last), sberrors.ErrRender,
		fmt.Sprintf("render target at x=%d failed %d times", g.X, MaxRestarts+1),
		"Check that the backend binary is installed and the font exists")
}
