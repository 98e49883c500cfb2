// Package producer samples host telemetry and publishes typed snapshots into
// broadcast cells. Each producer owns one category of state and its refresh
// policy; a Registry makes sure every category is sampled exactly once no
// matter how many segments display it.
package producer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jlesster/status-bar/internal/cell"
	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// DefaultInterval is the refresh period of interval-driven producers.
const DefaultInterval = time.Second

// errorBackoff bounds how fast a failing producer retries.
var errorBackoff = time.Second

// ErrAbsent reports that the sampled resource does not exist on this host
// (no battery, no backlight, closed input). The producer is downgraded to
// its placeholder value and is not retried.
var ErrAbsent = errors.New("resource not present")

// Producer yields values of one snapshot type.
type Producer[T any] interface {
	// Name identifies the producer in logs.
	Name() string

	// Initial is called once, synchronously, to seed the cell before the
	// first real sample.
	Initial() T

	// Produce waits until the next sample is due, takes it and returns it.
	// Calls are strictly sequential. A non-nil error other than ErrAbsent
	// is transient: the value is discarded and the cell keeps its last
	// good snapshot.
	Produce(ctx context.Context) (T, error)
}

// Run loops Produce and publishes every successful sample to c until ctx is
// cancelled or the producer reports ErrAbsent.
func Run[T any](ctx context.Context, p Producer[T], c *cell.Cell[T], logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger()
	}
	logger = logger.With("producer", p.Name())

	for {
		v, err := p.Produce(ctx)
		if ctx.Err() != nil {
			return
		}

		switch {
		case errors.Is(err, ErrAbsent):
			logger.Info("resource not present, showing placeholder", "reason", err)
			c.Write(v)
			return
		case err != nil:
			failure := sberrors.WrapWithCode(err, sberrors.ErrProducer,
				p.Name()+" sample failed", "The last good value stays on display")
			logger.Warn("sample failed, keeping last value", "error", failure)
			if sleep(ctx, errorBackoff) != nil {
				return
			}
			continue
		}

		c.Write(v)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
