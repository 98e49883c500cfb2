package producer

import (
	"context"
	"time"
)

// ClockProducer publishes the wall time just after each boundary of its
// interval, so a seconds display flips in step with the real clock.
type ClockProducer struct {
	every time.Duration
	now   func() time.Time
}

// NewClock creates a clock producer. A nil now uses time.Now.
func NewClock(every time.Duration, now func() time.Time) *ClockProducer {
	if every <= 0 {
		every = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}
	return &ClockProducer{every: every, now: now}
}

func (p *ClockProducer) Name() string { return "clock" }

func (p *ClockProducer) Initial() time.Time { return p.now() }

func (p *ClockProducer) Produce(ctx context.Context) (time.Time, error) {
	if err := sleep(ctx, untilBoundary(p.now(), p.every)); err != nil {
		return time.Time{}, err
	}
	return p.now(), nil
}

// untilBoundary returns the wait from t to the next multiple of every.
func untilBoundary(t time.Time, every time.Duration) time.Duration {
	return t.Truncate(every).Add(every).Sub(t)
}
