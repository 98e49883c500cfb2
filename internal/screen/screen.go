// Package screen discovers the active monitor outputs and reports when the
// set changes.
package screen

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// Screen is one active output in the global desktop coordinate space.
type Screen struct {
	ID     int
	X      int
	Y      int
	Width  int
	Height int
}

func (s Screen) String() string {
	return fmt.Sprintf("%d: %dx%d+%d+%d", s.ID, s.Width, s.Height, s.X, s.Y)
}

// Enumerator lists the active screens.
type Enumerator interface {
	Screens(ctx context.Context) ([]Screen, error)
}

// Static is a fixed screen list, for configs that pin the geometry and for
// tests.
type Static []Screen

func (s Static) Screens(context.Context) ([]Screen, error) {
	out := make([]Screen, len(s))
	copy(out, s)
	return out, nil
}

// monitorLine matches one monitor of `xrandr --listactivemonitors`:
//
//	0: +*eDP-1 1920/344x1080/193+0+0  eDP-1
var monitorLine = regexp.MustCompile(`(\d+):.* (\d+)/\d+x(\d+)/\d+\+(\d+)\+(\d+)`)

// ParseXrandr extracts the monitors from `xrandr --listactivemonitors`.
// Lines that do not describe a monitor are skipped.
func ParseXrandr(out string) []Screen {
	var screens []Screen
	for _, m := range monitorLine.FindAllStringSubmatch(out, -1) {
		screens = append(screens, Screen{
			ID:     atoi(m[1]),
			Width:  atoi(m[2]),
			Height: atoi(m[3]),
			X:      atoi(m[4]),
			Y:      atoi(m[5]),
		})
	}
	return screens
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Xrandr enumerates screens by running xrandr.
type Xrandr struct {
	// Command is the xrandr binary; empty means "xrandr" on PATH.
	Command string
}

func (x Xrandr) Screens(ctx context.Context) ([]Screen, error) {
	cmd := x.Command
	if cmd == "" {
		cmd = "xrandr"
	}
	out, err := exec.CommandContext(ctx, cmd, "--listactivemonitors").Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", cmd, err)
	}
	screens := ParseXrandr(string(out))
	if len(screens) == 0 {
		return nil, fmt.Errorf("no monitors in %s output", cmd)
	}
	return screens, nil
}
