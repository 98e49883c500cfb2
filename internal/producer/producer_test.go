package producer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlesster/status-bar/internal/cell"
	sberrors "github.com/jlesster/status-bar/internal/errors"
)

type step struct {
	value int
	err   error
}

// scripted replays steps, then blocks until cancelled.
type scripted struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (s *scripted) Name() string { return "scripted" }
func (s *scripted) Initial() int { return -1 }

func (s *scripted) Produce(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.calls++
	if len(s.steps) > 0 {
		st := s.steps[0]
		s.steps = s.steps[1:]
		s.mu.Unlock()
		return st.value, st.err
	}
	s.mu.Unlock()
	<-ctx.Done()
	return 0, ctx.Err()
}

func (s *scripted) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func withFastBackoff(t *testing.T) {
	t.Helper()
	old := errorBackoff
	errorBackoff = time.Millisecond
	t.Cleanup(func() { errorBackoff = old })
}

func TestRun_TransientErrorKeepsLastGood(t *testing.T) {
	withFastBackoff(t)
	p := &scripted{steps: []step{
		{value: 1},
		{value: 99, err: errors.New("read failed")},
		{value: 2},
	}}
	c := cell.New(p.Initial())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, p, c, nil)
		close(done)
	}()

	var seen []int
	var ver uint64
	for {
		v, next, err := c.Next(ctx, ver)
		require.NoError(t, err)
		ver = next
		seen = append(seen, v)
		if v == 2 {
			break
		}
	}
	cancel()
	<-done

	assert.NotContains(t, seen, 99, "failed sample must never be published")
	assert.Equal(t, 2, c.Now())
}

// recorder keeps the "error" attribute of every logged record.
type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler       { return r }
func (r *recorder) WithGroup(string) slog.Handler            { return r }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	rec.Attrs(func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok && a.Key == "error" {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		}
		return true
	})
	return nil
}

func (r *recorder) logged() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func TestRun_TransientErrorLoggedAsProducerError(t *testing.T) {
	withFastBackoff(t)
	cause := errors.New("read failed")
	p := &scripted{steps: []step{
		{err: cause},
		{value: 3},
	}}
	c := cell.New(p.Initial())
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, p, c, slog.New(rec))
		close(done)
	}()

	_, _, err := c.Next(ctx, 0)
	require.NoError(t, err)
	cancel()
	<-done

	errs := rec.logged()
	require.Len(t, errs, 1)
	assert.True(t, sberrors.IsCode(errs[0], sberrors.ErrProducer))
	assert.ErrorIs(t, errs[0], cause)
}

func TestRun_AbsentWritesPlaceholderAndStops(t *testing.T) {
	p := &scripted{steps: []step{
		{value: 5},
		{value: 0, err: ErrAbsent},
		{value: 7},
	}}
	c := cell.New(p.Initial())

	done := make(chan struct{})
	go func() {
		Run(context.Background(), p, c, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept looping after ErrAbsent")
	}
	assert.Equal(t, 0, c.Now())
	assert.Equal(t, 2, p.callCount())
}

func TestRun_StopsOnCancel(t *testing.T) {
	p := &scripted{}
	c := cell.New(p.Initial())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, p, c, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, -1, c.Now())
}

func TestRegistry_SharesOneProducerPerKind(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx, Options{}, nil)

	p := &scripted{}
	first := Provide[int](r, "counter", p)
	second := Provide[int](r, "counter", &scripted{})

	assert.Same(t, first, second)
	assert.Equal(t, []Kind{"counter"}, r.Kinds())

	cancel()
	r.Wait()
	assert.Equal(t, 1, p.callCount())
}

func TestRegistry_MismatchedTypePanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx, Options{}, nil)

	Provide[int](r, "counter", &scripted{})
	assert.Panics(t, func() {
		Provide[string](r, "counter", NewLines(eofReader{}))
	})
}

func TestRegistry_LinesWithoutInputIsAbsent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := NewRegistry(ctx, Options{}, nil)

	c := r.Lines()
	assert.Equal(t, "", c.Now())

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lines producer without input did not stop")
	}
}
