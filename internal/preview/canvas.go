package preview

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jlesster/status-bar/internal/colormap"
	"github.com/jlesster/status-bar/internal/markup"
)

const (
	fullCell  = "█"
	emptyCell = "░"
	sepCell   = "│"
)

// canvas maps the pixel positions of a display list onto terminal cells, one
// cell per character width.
type canvas struct {
	cells    []string
	charW    int
	fg       colormap.Color
	colorize Colorize
	pos      int
}

func newCanvas(width, charW int, fg colormap.Color, colorize Colorize) *canvas {
	if charW <= 0 {
		charW = 1
	}
	c := &canvas{cells: make([]string, width/charW), charW: charW, fg: fg, colorize: colorize}
	blank := colorize(fg, " ")
	for i := range c.cells {
		c.cells[i] = blank
	}
	return c
}

func (c *canvas) set(i int, color colormap.Color, s string) {
	if i >= 0 && i < len(c.cells) {
		c.cells[i] = c.colorize(color, s)
	}
}

func (c *canvas) paint(l markup.Line) {
	for _, it := range l {
		switch it := it.(type) {
		case markup.Space:
			c.pos += it.Width
		case markup.Fg:
			c.fg = it.Color
		case markup.Text:
			c.text(it.Text)
		case markup.Raw:
			c.text(stripDzen(it.Text))
		case markup.Bar:
			c.bar(it)
		case markup.Rect:
			for px := c.pos; px < c.pos+it.Width; px++ {
				c.set(px/c.charW, it.Color, fullCell)
			}
			c.pos += it.Width
		case markup.Sep:
			c.set(c.pos/c.charW, markup.SepColor, sepCell)
			c.pos += 2
		}
	}
}

func (c *canvas) text(s string) {
	i := (c.pos + c.charW - 1) / c.charW
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if i+w > len(c.cells) {
			break
		}
		c.set(i, c.fg, string(r))
		if w == 2 {
			c.cells[i+1] = ""
		}
		i += w
	}
	c.pos = i * c.charW
}

// bar draws a gauge in whole cells, so a narrow gauge still gets one.
func (c *canvas) bar(b markup.Bar) {
	start := c.pos / c.charW
	n := b.Width / c.charW
	if n == 0 && b.Width > 0 {
		n = 1
	}
	fill := markup.Fill(b.Value, n)
	for i := 0; i < n; i++ {
		if i < fill {
			c.set(start+i, b.Color, fullCell)
		} else {
			c.set(start+i, b.Color, emptyCell)
		}
	}
	c.pos += b.Width
}

func (c *canvas) String() string {
	return strings.Join(c.cells, "")
}

var dzenCommand = regexp.MustCompile(`\^[a-z]+\([^)]*\)`)

// stripDzen removes dzen2 commands from external input.
func stripDzen(s string) string {
	const caret = "\x00"
	s = strings.ReplaceAll(s, "^^", caret)
	s = dzenCommand.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, caret, "^")
}
