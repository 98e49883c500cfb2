// Package preview draws the bars in a terminal. It stands in for dzen2 so a
// configuration can be tried without an X session.
package preview

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jlesster/status-bar/internal/colormap"
	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/render"
	"github.com/jlesster/status-bar/internal/screen"
)

// Options configure the model.
type Options struct {
	CharWidth  int
	Foreground colormap.Color
	Background colormap.Color
	// Colorize defaults to LipglossColorize(Background).
	Colorize Colorize
}

type segmentState struct {
	geom render.Geometry
	line markup.Line
}

// Model is the bubbletea model of the preview.
type Model struct {
	opts     Options
	screens  []screen.Screen
	segments map[int]segmentState

	width  int
	height int
	err    error
}

// NewModel creates an empty preview.
func NewModel(opts Options) Model {
	if opts.CharWidth <= 0 {
		opts.CharWidth = 1
	}
	if opts.Colorize == nil {
		opts.Colorize = LipglossColorize(opts.Background)
	}
	return Model{opts: opts, segments: make(map[int]segmentState)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ScreensMsg:
		m.screens = msg.Screens

	case DrawMsg:
		m.segments[msg.ID] = segmentState{geom: msg.Geometry, line: msg.Line}

	case CloseMsg:
		delete(m.segments, msg.ID)

	case ErrMsg:
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// Err returns the error the preview stopped with, if any.
func (m Model) Err() error { return m.err }

// on returns the segments drawn on s, left to right.
func (m Model) on(s screen.Screen) []segmentState {
	var out []segmentState
	for _, st := range m.segments {
		if st.geom.X >= s.X && st.geom.X < s.X+s.Width && st.geom.Y == s.Y {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].geom.X < out[j].geom.X })
	return out
}
