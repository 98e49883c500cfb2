package producer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// LinesProducer is event driven: it publishes each line read from an input
// stream (normally stdin) and has no timer of its own.
type LinesProducer struct {
	lines    chan string
	errc     chan error
	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
	last     string
}

// NewLines starts reading r in the background. Reading stops at EOF.
func NewLines(r io.Reader) *LinesProducer {
	p := &LinesProducer{
		lines:    make(chan string),
		errc:     make(chan error, 1),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go p.scan(r)
	return p
}

func (p *LinesProducer) scan(r io.Reader) {
	defer close(p.finished)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.done:
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	p.errc <- err
}

func (p *LinesProducer) Name() string { return "lines" }

func (p *LinesProducer) Initial() string { return "" }

// Produce blocks until the next line. The end of input downgrades the
// producer: the last line stays on display.
func (p *LinesProducer) Produce(ctx context.Context) (string, error) {
	select {
	case line := <-p.lines:
		p.last = line
		return line, nil
	case err := <-p.errc:
		p.errc <- err
		if err == io.EOF {
			return p.last, fmt.Errorf("input closed: %w", ErrAbsent)
		}
		return p.last, fmt.Errorf("read input: %w (%w)", err, ErrAbsent)
	case <-ctx.Done():
		p.stop()
		return p.last, ctx.Err()
	}
}

// stop ends the background reader at its next line. A read already blocked
// on the input returns only when the input does.
func (p *LinesProducer) stop() {
	p.stopOnce.Do(func() { close(p.done) })
}
