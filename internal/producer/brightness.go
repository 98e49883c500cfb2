package producer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultBacklightRoot is where Linux exposes backlight devices.
const DefaultBacklightRoot = "/sys/class/backlight"

// Brightness holds the backlight level as a fraction of its maximum.
type Brightness struct {
	Fraction float64
}

// BrightnessProducer publishes the backlight level whenever the brightness
// file changes. Change notification is best effort, so it also re-reads the
// file every fallback period.
type BrightnessProducer struct {
	current  string
	max      float64
	fallback time.Duration
	watcher  *fsnotify.Watcher
	absent   error
}

// NewBrightness watches the first backlight device under root. A missing
// root, an empty root, or an unreadable max_brightness marks the producer
// absent.
func NewBrightness(root string, fallback time.Duration) *BrightnessProducer {
	if root == "" {
		root = DefaultBacklightRoot
	}
	if fallback <= 0 {
		fallback = 10 * DefaultInterval
	}
	p := &BrightnessProducer{fallback: fallback}

	dev, err := firstDevice(root)
	if err != nil {
		p.absent = err
		return p
	}
	p.current = filepath.Join(dev, "brightness")

	top, err := readNumber(filepath.Join(dev, "max_brightness"))
	if err != nil || top <= 0 {
		p.absent = fmt.Errorf("max_brightness of %s unusable", dev)
		return p
	}
	p.max = top

	if w, err := fsnotify.NewWatcher(); err == nil {
		if err := w.Add(p.current); err == nil {
			p.watcher = w
		} else {
			w.Close()
		}
	}
	return p
}

func firstDevice(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("backlight directory %s: %w", root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no backlight device under %s", root)
	}
	sort.Strings(names)
	return filepath.Join(root, names[0]), nil
}

func readNumber(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
}

func (p *BrightnessProducer) Name() string { return "brightness" }

func (p *BrightnessProducer) Initial() Brightness {
	if p.absent != nil {
		return Brightness{}
	}
	b, err := p.sample()
	if err != nil {
		return Brightness{}
	}
	return b
}

func (p *BrightnessProducer) Produce(ctx context.Context) (Brightness, error) {
	if p.absent != nil {
		return Brightness{}, fmt.Errorf("%v: %w", p.absent, ErrAbsent)
	}

	timer := time.NewTimer(p.fallback)
	defer timer.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if p.watcher != nil {
		events, errs = p.watcher.Events, p.watcher.Errors
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return Brightness{}, fmt.Errorf("watch %s: %w", p.current, err)
		case <-timer.C:
		case <-ctx.Done():
			p.close()
			return Brightness{}, ctx.Err()
		}
		return p.sample()
	}
}

func (p *BrightnessProducer) sample() (Brightness, error) {
	cur, err := readNumber(p.current)
	if err != nil {
		return Brightness{}, fmt.Errorf("read brightness: %w", err)
	}
	return Brightness{Fraction: clamp01(cur / p.max)}, nil
}

func (p *BrightnessProducer) close() {
	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}
}
