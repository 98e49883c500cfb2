package render

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sberrors "github.com/jlesster/status-bar/internal/errors"
	"github.com/jlesster/status-bar/internal/markup"
)

type fakeTarget struct {
	backend *fakeBackend
	fail    bool
	closed  bool
}

func (t *fakeTarget) Draw(l markup.Line) error {
	if t.fail {
		return errors.New("broken pipe")
	}
	t.backend.mu.Lock()
	t.backend.lines = append(t.backend.lines, markup.Dzen(l))
	t.backend.mu.Unlock()
	return nil
}

func (t *fakeTarget) Close() error {
	t.closed = true
	return nil
}

type fakeBackend struct {
	mu      sync.Mutex
	opens   int
	failing func(open int) bool
	targets []*fakeTarget
	lines   []string
}

func (b *fakeBackend) Open(_ context.Context, _ Geometry) (Target, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opens++
	t := &fakeTarget{backend: b, fail: b.failing != nil && b.failing(b.opens)}
	b.targets = append(b.targets, t)
	return t, nil
}

func drawForever(ctx context.Context, draw func(markup.Line) error) error {
	for {
		if err := draw(markup.Line{markup.Space{Width: 1}}); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func TestKeep_DropsAfterRepeatedFailures(t *testing.T) {
	b := &fakeBackend{failing: func(int) bool { return true }}

	err := Keep(context.Background(), b, Geometry{X: 10, Width: 50}, nil, drawForever)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDropped)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrRender))
	assert.Equal(t, MaxRestarts+1, b.opens)
	for _, tgt := range b.targets {
		assert.True(t, tgt.closed, "every failed target is closed")
	}
}

func TestKeep_SuccessfulDrawResetsFailures(t *testing.T) {
	// Targets 1 and 2 fail at once. Target 3 draws, so its failure starts a
	// new count, and targets 4 to 6 exhaust the restarts.
	b := &fakeBackend{failing: func(n int) bool { return n != 3 }}
	calls := 0
	fn := func(ctx context.Context, draw func(markup.Line) error) error {
		calls++
		if err := draw(markup.Line{}); err != nil {
			return err
		}
		return errors.New("process exited")
	}

	err := Keep(context.Background(), b, Geometry{}, nil, fn)
	assert.ErrorIs(t, err, ErrDropped)
	assert.Equal(t, 3+MaxRestarts, b.opens)
	assert.Equal(t, b.opens, calls)
}

func TestKeep_CancelIsNotAnError(t *testing.T) {
	b := &fakeBackend{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Keep(ctx, b, Geometry{}, nil, drawForever) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Keep did not return after cancel")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 1, b.opens)
	assert.True(t, b.targets[0].closed)
	assert.NotEmpty(t, b.lines)
}

func TestDzen_Args(t *testing.T) {
	d := &Dzen{Font: "Terminus-9", Background: "#000000", Foreground: "#ffffff"}

	assert.Equal(t, []string{
		"-ta", "l", "-x", "1350", "-y", "0", "-w", "100", "-h", "16", "-e", "",
		"-fn", "Terminus-9", "-bg", "#000000", "-fg", "#ffffff",
	}, d.Args(Geometry{X: 1350, Width: 100, Height: 16}))
}

func TestDzen_WritesMarkupToProcess(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	script := filepath.Join(dir, "fake-dzen2")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexec cat > \"$DZEN_OUT\"\n"), 0o755))
	t.Setenv("DZEN_OUT", out)

	d := &Dzen{Binary: script}
	tgt, err := d.Open(context.Background(), Geometry{Width: 10, Height: 8})
	require.NoError(t, err)

	require.NoError(t, tgt.Draw(markup.Line{markup.Space{Width: 3}}))
	require.NoError(t, tgt.Draw(markup.Line{markup.Sep{Height: 8}}))
	require.NoError(t, tgt.Close())
	require.NoError(t, tgt.Close())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "^r(3x0)\n^fg(#888888)^r(2x8)\n", string(got))
}

func TestDzen_MissingBinary(t *testing.T) {
	_, err := (&Dzen{Binary: "/nonexistent/dzen2"}).Open(context.Background(), Geometry{})
	assert.Error(t, err)
}
