package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/jlesster/status-bar/internal/markup"
)

// Dzen opens one dzen2 process per segment and feeds it dzen2 markup on
// standard input.
type Dzen struct {
	Binary     string
	Font       string
	Background string
	Foreground string
	Logger     *slog.Logger
}

// Args returns the dzen2 command line for g.
func (d *Dzen) Args(g Geometry) []string {
	args := []string{
		"-ta", "l",
		"-x", strconv.Itoa(g.X),
		"-y", strconv.Itoa(g.Y),
		"-w", strconv.Itoa(g.Width),
		"-h", strconv.Itoa(g.Height),
		// No event actions: dzen2 exits on right click by default.
		"-e", "",
	}
	if d.Font != "" {
		args = append(args, "-fn", d.Font)
	}
	if d.Background != "" {
		args = append(args, "-bg", d.Background)
	}
	if d.Foreground != "" {
		args = append(args, "-fg", d.Foreground)
	}
	return args
}

func (d *Dzen) Open(ctx context.Context, g Geometry) (Target, error) {
	bin := d.Binary
	if bin == "" {
		bin = "dzen2"
	}
	cmd := exec.CommandContext(ctx, bin, d.Args(g)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("dzen2 stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Debug("started dzen2", "pid", cmd.Process.Pid, "x", g.X, "width", g.Width)
	return &dzenTarget{cmd: cmd, stdin: stdin}, nil
}

type dzenTarget struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	once  sync.Once
	err   error
}

func (t *dzenTarget) Draw(l markup.Line) error {
	if _, err := io.WriteString(t.stdin, markup.Dzen(l)); err != nil {
		return fmt.Errorf("write to dzen2 (pid %d): %w", t.cmd.Process.Pid, err)
	}
	return nil
}

// closeGrace is how long a target may take to exit after its input closes.
const closeGrace = time.Second

// Close ends the input, which makes dzen2 exit, and reaps the process. A
// process that outlives closeGrace is killed. Close is safe to call more
// than once.
func (t *dzenTarget) Close() error {
	t.once.Do(func() {
		t.stdin.Close()

		exited := make(chan error, 1)
		go func() { exited <- t.cmd.Wait() }()

		var err error
		select {
		case err = <-exited:
		case <-time.After(closeGrace):
			t.cmd.Process.Kill()
			err = <-exited
		}
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			t.err = err
		}
	})
	return t.err
}
