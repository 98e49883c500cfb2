// Package cell provides a broadcast "latest value" holder. One producer
// writes snapshots; any number of consumers either read the current value
// or block until a newer one is published.
package cell

import (
	"context"
	"sync"
)

// Cell holds the most recent value published by a producer.
//
// It is level-triggered: a slow consumer never blocks the writer and never
// sees a queue of stale values; it jumps straight to the latest snapshot.
// Each Write bumps a version so consumers can tell whether they have
// already seen the current value.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	changed chan struct{}
}

// New creates a Cell seeded with initial at version 0.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:   initial,
		changed: make(chan struct{}),
	}
}

// Write publishes v and wakes every waiting consumer. It never blocks on
// consumers.
func (c *Cell[T]) Write(v T) {
	c.mu.Lock()
	c.value = v
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

// Now returns the latest published value without waiting.
func (c *Cell[T]) Now() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Snapshot returns the latest value together with its version.
func (c *Cell[T]) Snapshot() (T, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.version
}

// Read waits for a publication that happens after the call begins and
// returns the latest value. It never returns the value that was already
// current when it was called.
func (c *Cell[T]) Read(ctx context.Context) (T, error) {
	c.mu.RLock()
	ch := c.changed
	c.mu.RUnlock()

	select {
	case <-ch:
		return c.Now(), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Next returns the latest value once its version is greater than after.
// If a newer value is already present it returns immediately, so a consumer
// that passes the version it last rendered never misses a write made while
// it was busy and never renders an older snapshot.
func (c *Cell[T]) Next(ctx context.Context, after uint64) (T, uint64, error) {
	for {
		c.mu.RLock()
		v, ver, ch := c.value, c.version, c.changed
		c.mu.RUnlock()

		if ver > after {
			return v, ver, nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			var zero T
			return zero, after, ctx.Err()
		}
	}
}
