package preview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jlesster/status-bar/internal/colormap"
)

var (
	primary = lipgloss.Color("#D7BAFF")
	surface = lipgloss.Color("#16121B")
	textDim = lipgloss.Color("8")
	red     = lipgloss.Color("9")

	labelStyle = lipgloss.NewStyle().
			Foreground(surface).
			Background(primary).
			Bold(true).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(textDim)

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(red).
			Foreground(red).
			Padding(0, 1)
)

// Colorize paints s in fg. The preview uses lipgloss; tests swap in a plain
// version.
type Colorize func(fg colormap.Color, s string) string

// LipglossColorize paints cells with lipgloss over the bar background.
func LipglossColorize(background colormap.Color) Colorize {
	base := lipgloss.NewStyle().Background(lipgloss.Color(background.String()))
	return func(fg colormap.Color, s string) string {
		return base.Foreground(lipgloss.Color(fg.String())).Render(s)
	}
}
