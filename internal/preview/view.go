package preview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jlesster/status-bar/internal/screen"
)

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	if len(m.screens) == 0 {
		return dimStyle.Render("Waiting for screens..")
	}

	rows := make([]string, 0, 2*len(m.screens)+1)
	for _, s := range m.screens {
		rows = append(rows, labelStyle.Render(s.String()), m.renderScreen(s))
	}
	rows = append(rows, dimStyle.Render("q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderScreen draws every segment of s on one row of cells.
func (m Model) renderScreen(s screen.Screen) string {
	row := newCanvas(s.Width, m.opts.CharWidth, m.opts.Foreground, m.opts.Colorize)
	for _, st := range m.on(s) {
		// Each segment paints on its own canvas so it is clipped to its
		// allocated width.
		seg := newCanvas(st.geom.Width, m.opts.CharWidth, m.opts.Foreground, m.opts.Colorize)
		seg.paint(st.line)
		start := (st.geom.X - s.X) / row.charW
		for i, cell := range seg.cells {
			if start+i < len(row.cells) {
				row.cells[start+i] = cell
			}
		}
	}
	out := row.String()
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}
