package producer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/net"
)

// Network holds bytes moved across all non-loopback interfaces since the
// previous sample and the wall time that sample covers.
type Network struct {
	Received    uint64
	Transmitted uint64
	Elapsed     time.Duration
}

// RxRate returns received bytes per second.
func (n Network) RxRate() float64 { return rate(n.Received, n.Elapsed) }

// TxRate returns transmitted bytes per second.
func (n Network) TxRate() float64 { return rate(n.Transmitted, n.Elapsed) }

func rate(bytes uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes) / elapsed.Seconds()
}

// CountersFunc returns cumulative received and transmitted byte counters.
type CountersFunc func(ctx context.Context) (rx, tx uint64, err error)

// NetworkProducer turns cumulative interface counters into per-tick deltas.
// The baseline is taken at construction, so the first sample covers the time
// since the producer was created rather than a degenerate interval. When the
// baseline cannot be read, the first successful sample becomes the baseline
// and reports no traffic.
type NetworkProducer struct {
	interval
	counters CountersFunc
	now      func() time.Time

	prevRx, prevTx uint64
	prevAt         time.Time
	baselined      bool
}

// NewNetwork creates a network producer. A nil counters sums gopsutil's
// per-interface counters, skipping loopback devices. A nil now uses time.Now.
func NewNetwork(every time.Duration, counters CountersFunc, now func() time.Time) *NetworkProducer {
	if counters == nil {
		counters = interfaceCounters
	}
	if now == nil {
		now = time.Now
	}
	p := &NetworkProducer{interval: interval{every}, counters: counters, now: now}
	if rx, tx, err := counters(context.Background()); err == nil {
		p.prevRx, p.prevTx, p.baselined = rx, tx, true
	}
	p.prevAt = now()
	return p
}

func (p *NetworkProducer) Name() string { return "network" }

func (p *NetworkProducer) Initial() Network { return Network{} }

func (p *NetworkProducer) Produce(ctx context.Context) (Network, error) {
	if err := p.wait(ctx); err != nil {
		return Network{}, err
	}
	return p.sample(ctx)
}

func (p *NetworkProducer) sample(ctx context.Context) (Network, error) {
	rx, tx, err := p.counters(ctx)
	if err != nil {
		return Network{}, fmt.Errorf("read network counters: %w", err)
	}
	at := p.now()
	if !p.baselined {
		p.prevRx, p.prevTx, p.prevAt, p.baselined = rx, tx, at, true
		return Network{}, nil
	}

	n := Network{
		Received:    delta(p.prevRx, rx),
		Transmitted: delta(p.prevTx, tx),
		Elapsed:     at.Sub(p.prevAt),
	}
	p.prevRx, p.prevTx, p.prevAt = rx, tx, at
	return n, nil
}

// delta treats a counter that went backwards (interface reset) as no traffic.
func delta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func interfaceCounters(ctx context.Context) (uint64, uint64, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return 0, 0, err
	}
	var rx, tx uint64
	for _, s := range stats {
		if strings.HasPrefix(s.Name, "lo") {
			continue
		}
		rx += s.BytesRecv
		tx += s.BytesSent
	}
	return rx, tx, nil
}
