package producer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jlesster/status-bar/internal/cell"
)

// Kind identifies one shared producer.
type Kind string

const (
	KindCPU         Kind = "cpu"
	KindMemory      Kind = "memory"
	KindNetwork     Kind = "network"
	KindBattery     Kind = "battery"
	KindTemperature Kind = "temperature"
	KindClock       Kind = "clock"
	KindLines       Kind = "lines"
	KindBrightness  Kind = "brightness"
	KindWindow      Kind = "window"
)

// DiskKind is the kind of the disk producer for one mount point.
func DiskKind(path string) Kind { return Kind("disk:" + path) }

// VolumeKind is the kind of the volume producer for one mixer control.
func VolumeKind(card int, channel string) Kind {
	return Kind(fmt.Sprintf("volume:%d:%s", card, channel))
}

// Options configures the producers a Registry creates on demand.
type Options struct {
	// Interval is the refresh period of interval-driven producers.
	Interval time.Duration
	// Input feeds the lines producer. Nil means no input, which marks
	// the producer absent.
	Input io.Reader
	// BacklightRoot overrides DefaultBacklightRoot.
	BacklightRoot string
	// WindowManager feeds the window producer. Nil marks it absent.
	WindowManager WindowManager
}

// Registry owns one cell and one running producer per Kind. It is built once
// at startup and handed to every segment; segments that display the same
// metric share a single sampling loop.
//
// Producers are started lazily on first request and run until the context
// given to NewRegistry is cancelled. Stopping a segment never stops the
// producer behind it.
type Registry struct {
	ctx    context.Context
	logger *slog.Logger
	opts   Options

	mu    sync.Mutex
	cells map[Kind]any
	wg    sync.WaitGroup
}

// NewRegistry creates an empty registry. Producers inherit ctx.
func NewRegistry(ctx context.Context, opts Options, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = discardLogger()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Registry{
		ctx:    ctx,
		logger: logger,
		opts:   opts,
		cells:  make(map[Kind]any),
	}
}

// Provide registers p under kind and starts it, unless a producer already
// runs under that kind. It returns the cell for kind either way.
func Provide[T any](r *Registry, kind Kind, p Producer[T]) *cell.Cell[T] {
	return cellFor(r, kind, func() Producer[T] { return p })
}

// cellFor returns the cell for kind, constructing and starting the producer
// on first use. The producer is built under the lock so construction happens
// exactly once per kind.
func cellFor[T any](r *Registry, kind Kind, build func() Producer[T]) *cell.Cell[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.cells[kind]; ok {
		c, ok := existing.(*cell.Cell[T])
		if !ok {
			panic("producer: kind " + string(kind) + " registered with a different value type")
		}
		return c
	}

	p := build()
	c := cell.New(p.Initial())
	r.cells[kind] = c

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		Run(r.ctx, p, c, r.logger)
	}()
	r.logger.Debug("started producer", "kind", string(kind))
	return c
}

// Wait blocks until every started producer has returned.
func (r *Registry) Wait() { r.wg.Wait() }

// Kinds returns the kinds that have a running or finished producer.
func (r *Registry) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, 0, len(r.cells))
	for k := range r.cells {
		kinds = append(kinds, k)
	}
	return kinds
}

func (r *Registry) CPU() *cell.Cell[CPU] {
	return cellFor(r, KindCPU, func() Producer[CPU] { return NewCPU(r.opts.Interval, nil) })
}

func (r *Registry) Memory() *cell.Cell[Memory] {
	return cellFor(r, KindMemory, func() Producer[Memory] { return NewMemory(r.opts.Interval, nil) })
}

func (r *Registry) Network() *cell.Cell[Network] {
	return cellFor(r, KindNetwork, func() Producer[Network] { return NewNetwork(r.opts.Interval, nil, nil) })
}

func (r *Registry) Battery() *cell.Cell[Battery] {
	return cellFor(r, KindBattery, func() Producer[Battery] { return NewBattery(r.opts.Interval, nil) })
}

func (r *Registry) Temperature() *cell.Cell[Temperature] {
	return cellFor(r, KindTemperature, func() Producer[Temperature] {
		return NewTemperature(r.opts.Interval, nil)
	})
}

func (r *Registry) Clock() *cell.Cell[time.Time] {
	return cellFor(r, KindClock, func() Producer[time.Time] { return NewClock(r.opts.Interval, nil) })
}

// Lines returns the cell fed by Options.Input.
func (r *Registry) Lines() *cell.Cell[string] {
	return cellFor(r, KindLines, func() Producer[string] {
		if r.opts.Input == nil {
			return NewLines(eofReader{})
		}
		return NewLines(r.opts.Input)
	})
}

func (r *Registry) Brightness() *cell.Cell[Brightness] {
	return cellFor(r, KindBrightness, func() Producer[Brightness] {
		return NewBrightness(r.opts.BacklightRoot, 10*r.opts.Interval)
	})
}

func (r *Registry) Disk(path string) *cell.Cell[Disk] {
	return cellFor(r, DiskKind(path), func() Producer[Disk] { return NewDisk(10*r.opts.Interval, path, nil) })
}

func (r *Registry) Volume(card int, channel string) *cell.Cell[Volume] {
	return cellFor(r, VolumeKind(card, channel), func() Producer[Volume] {
		return NewVolume(r.opts.Interval, card, channel, nil)
	})
}

func (r *Registry) Window() *cell.Cell[Window] {
	return cellFor(r, KindWindow, func() Producer[Window] { return NewWindow(r.opts.WindowManager) })
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
