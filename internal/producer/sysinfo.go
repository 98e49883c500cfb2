package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// NoTemperature is reported when no sensor could be read.
const NoTemperature = -1.0

// CPU holds fractional usage in [0, 1] since the previous sample.
type CPU struct {
	Min   float64
	Avg   float64
	Max   float64
	Cores []float64
}

// Memory holds physical memory figures in bytes.
type Memory struct {
	Available uint64
	Total     uint64
}

// UsedFraction returns the share of memory not available, in [0, 1].
func (m Memory) UsedFraction() float64 {
	if m.Total == 0 {
		return 0
	}
	return 1 - float64(m.Available)/float64(m.Total)
}

// Temperature holds the hottest sensor reading in degrees Celsius.
type Temperature struct {
	Max float64
}

// Disk holds usage of one mount point.
type Disk struct {
	Path         string
	UsedFraction float64
}

// interval is embedded by producers that sample on a fixed period.
type interval struct {
	every time.Duration
}

func (i interval) wait(ctx context.Context) error {
	every := i.every
	if every <= 0 {
		every = DefaultInterval
	}
	return sleep(ctx, every)
}

// --- CPU ---

// CPUTimesFunc returns cumulative per-core CPU times.
type CPUTimesFunc func(ctx context.Context) ([]cpu.TimesStat, error)

// CPUProducer derives usage from the change in cumulative CPU times between
// samples. The first baseline is taken at construction, so the first
// published value covers the time since the producer was created.
type CPUProducer struct {
	interval
	times CPUTimesFunc
	prev  []cpu.TimesStat
}

// NewCPU creates a CPU producer. A nil times reads per-core times via gopsutil.
func NewCPU(every time.Duration, times CPUTimesFunc) *CPUProducer {
	if times == nil {
		times = func(ctx context.Context) ([]cpu.TimesStat, error) {
			return cpu.TimesWithContext(ctx, true)
		}
	}
	p := &CPUProducer{interval: interval{every}, times: times}
	p.prev, _ = times(context.Background())
	return p
}

func (p *CPUProducer) Name() string { return "cpu" }

func (p *CPUProducer) Initial() CPU {
	return CPU{Cores: make([]float64, len(p.prev))}
}

func (p *CPUProducer) Produce(ctx context.Context) (CPU, error) {
	if err := p.wait(ctx); err != nil {
		return CPU{}, err
	}
	return p.sample(ctx)
}

func (p *CPUProducer) sample(ctx context.Context) (CPU, error) {
	cur, err := p.times(ctx)
	if err != nil {
		return CPU{}, fmt.Errorf("read cpu times: %w", err)
	}
	prev := p.prev
	p.prev = cur

	cores := make([]float64, len(cur))
	if len(prev) == len(cur) {
		for i := range cur {
			cores[i] = coreUsage(prev[i], cur[i])
		}
	}
	return summarizeCores(cores), nil
}

func coreUsage(prev, cur cpu.TimesStat) float64 {
	idle := func(t cpu.TimesStat) float64 { return t.Idle + t.Iowait }
	busy := func(t cpu.TimesStat) float64 {
		return t.User + t.Nice + t.System + t.Irq + t.Softirq + t.Steal
	}

	idleD := idle(cur) - idle(prev)
	totalD := idleD + busy(cur) - busy(prev)
	if totalD <= 0 {
		return 0
	}
	return clamp01((totalD - idleD) / totalD)
}

func summarizeCores(cores []float64) CPU {
	c := CPU{Cores: cores}
	if len(cores) == 0 {
		return c
	}
	c.Min, c.Max = cores[0], cores[0]
	var sum float64
	for _, v := range cores {
		sum += v
		if v < c.Min {
			c.Min = v
		}
		if v > c.Max {
			c.Max = v
		}
	}
	c.Avg = sum / float64(len(cores))
	return c
}

// --- Memory ---

// MemoryFunc reads virtual memory statistics.
type MemoryFunc func(ctx context.Context) (*mem.VirtualMemoryStat, error)

// MemoryProducer samples available memory.
type MemoryProducer struct {
	interval
	read MemoryFunc
}

// NewMemory creates a memory producer. A nil read uses gopsutil.
func NewMemory(every time.Duration, read MemoryFunc) *MemoryProducer {
	if read == nil {
		read = mem.VirtualMemoryWithContext
	}
	return &MemoryProducer{interval: interval{every}, read: read}
}

func (p *MemoryProducer) Name() string { return "memory" }

func (p *MemoryProducer) Initial() Memory {
	m, err := p.sample(context.Background())
	if err != nil {
		return Memory{}
	}
	return m
}

func (p *MemoryProducer) Produce(ctx context.Context) (Memory, error) {
	if err := p.wait(ctx); err != nil {
		return Memory{}, err
	}
	return p.sample(ctx)
}

func (p *MemoryProducer) sample(ctx context.Context) (Memory, error) {
	vm, err := p.read(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("read memory: %w", err)
	}
	return Memory{Available: vm.Available, Total: vm.Total}, nil
}

// --- Temperature ---

// SensorsFunc reads temperature sensors.
type SensorsFunc func(ctx context.Context) ([]host.TemperatureStat, error)

// TemperatureProducer reports the maximum temperature across sensors.
type TemperatureProducer struct {
	interval
	read   SensorsFunc
	absent bool
}

// NewTemperature creates a temperature producer. A nil read uses gopsutil.
// A host that exposes no sensors at all is treated as structurally absent.
func NewTemperature(every time.Duration, read SensorsFunc) *TemperatureProducer {
	if read == nil {
		read = host.SensorsTemperaturesWithContext
	}
	p := &TemperatureProducer{interval: interval{every}, read: read}
	temps, err := read(context.Background())
	p.absent = err == nil && len(temps) == 0
	return p
}

func (p *TemperatureProducer) Name() string { return "temperature" }

func (p *TemperatureProducer) Initial() Temperature {
	if p.absent {
		return Temperature{Max: NoTemperature}
	}
	t, err := p.sample(context.Background())
	if err != nil {
		return Temperature{Max: NoTemperature}
	}
	return t
}

func (p *TemperatureProducer) Produce(ctx context.Context) (Temperature, error) {
	if p.absent {
		return Temperature{Max: NoTemperature}, fmt.Errorf("temperature sensors: %w", ErrAbsent)
	}
	if err := p.wait(ctx); err != nil {
		return Temperature{}, err
	}
	return p.sample(ctx)
}

func (p *TemperatureProducer) sample(ctx context.Context) (Temperature, error) {
	temps, err := p.read(ctx)
	// gopsutil reports unreadable sensors as warnings next to the readable ones.
	if len(temps) == 0 {
		if err == nil {
			err = fmt.Errorf("no sensors returned")
		}
		return Temperature{}, fmt.Errorf("read sensors: %w", err)
	}
	hottest := NoTemperature
	for _, t := range temps {
		if t.Temperature > hottest {
			hottest = t.Temperature
		}
	}
	return Temperature{Max: hottest}, nil
}

// --- Disk ---

// DiskFunc reads usage of a mount point.
type DiskFunc func(ctx context.Context, path string) (*disk.UsageStat, error)

// DiskProducer samples usage of one mount point.
type DiskProducer struct {
	interval
	path string
	read DiskFunc
}

// NewDisk creates a disk usage producer for path. A nil read uses gopsutil.
func NewDisk(every time.Duration, path string, read DiskFunc) *DiskProducer {
	if read == nil {
		read = disk.UsageWithContext
	}
	return &DiskProducer{interval: interval{every}, path: path, read: read}
}

func (p *DiskProducer) Name() string { return "disk:" + p.path }

func (p *DiskProducer) Initial() Disk {
	d, err := p.sample(context.Background())
	if err != nil {
		return Disk{Path: p.path}
	}
	return d
}

func (p *DiskProducer) Produce(ctx context.Context) (Disk, error) {
	if err := p.wait(ctx); err != nil {
		return Disk{}, err
	}
	return p.sample(ctx)
}

func (p *DiskProducer) sample(ctx context.Context) (Disk, error) {
	u, err := p.read(ctx, p.path)
	if err != nil {
		return Disk{}, fmt.Errorf("disk usage %s: %w", p.path, err)
	}
	return Disk{Path: p.path, UsedFraction: clamp01(u.UsedPercent / 100)}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
