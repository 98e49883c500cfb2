package screen

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"
)

// DefaultPoll is how often the Watcher re-enumerates screens.
const DefaultPoll = 5 * time.Second

// Watcher polls an Enumerator and reports every change of the screen list.
// A failed enumeration counts as "no screens"; the next poll tries again.
type Watcher struct {
	source Enumerator
	poll   time.Duration
	logger *slog.Logger
}

// NewWatcher creates a watcher polling source every poll.
func NewWatcher(source Enumerator, poll time.Duration, logger *slog.Logger) *Watcher {
	if poll <= 0 {
		poll = DefaultPoll
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{source: source, poll: poll, logger: logger}
}

// Current enumerates once.
func (w *Watcher) Current(ctx context.Context) []Screen {
	screens, err := w.source.Screens(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("screen enumeration failed, treating as no screens", "error", err)
		}
		return nil
	}
	return screens
}

// Run calls onChange with the initial screen list and then with every list
// that differs from the previous one, until ctx is cancelled. onChange runs
// on the watcher's goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func([]Screen)) {
	prev := w.Current(ctx)
	if ctx.Err() != nil {
		return
	}
	onChange(prev)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cur := w.Current(ctx)
		if ctx.Err() != nil {
			return
		}
		if slices.Equal(cur, prev) {
			continue
		}
		w.logger.Info("screen configuration changed", "before", len(prev), "after", len(cur))
		prev = cur
		onChange(cur)
	}
}
