// Package markup describes what a segment draws as a backend-neutral display
// list, and encodes display lists into the dzen2 in-band command language.
package markup

import (
	"github.com/jlesster/status-bar/internal/colormap"
)

// SepColor is the colour of separators and of text without a colormap.
var SepColor = colormap.MustParseHex("#888888")

// Item is one drawing primitive.
type Item interface {
	item()
}

// Bar is a horizontal gauge: the filled part is Value*Width pixels wide.
type Bar struct {
	Value  float64
	Color  colormap.Color
	Width  int
	Height int
}

// Space is empty horizontal space.
type Space struct {
	Width int
}

// Fg sets the colour of everything drawn after it.
type Fg struct {
	Color colormap.Color
}

// Text is literal text in the current colour.
type Text struct {
	Text string
}

// Raw is passed to the backend untouched. External input may carry its own
// dzen2 commands.
type Raw struct {
	Text string
}

// Rect is a filled rectangle in the given colour.
type Rect struct {
	Color  colormap.Color
	Width  int
	Height int
}

// Sep is a 2px vertical separator.
type Sep struct {
	Height int
}

func (Bar) item()   {}
func (Space) item() {}
func (Fg) item()    {}
func (Text) item()  {}
func (Raw) item()   {}
func (Rect) item()  {}
func (Sep) item()   {}

// Line is the display list for one draw of one segment.
type Line []Item

// Pad surrounds l with leading and trailing space, skipping zero widths.
func Pad(lead int, l Line, trail int) Line {
	out := make(Line, 0, len(l)+2)
	if lead > 0 {
		out = append(out, Space{Width: lead})
	}
	out = append(out, l...)
	if trail > 0 {
		out = append(out, Space{Width: trail})
	}
	return out
}

// Fill returns the filled width of a gauge of width pixels at value, rounded
// to the nearest pixel and kept within [0, width].
func Fill(value float64, width int) int {
	if width <= 0 {
		return 0
	}
	fill := int(value*float64(width) + 0.5)
	switch {
	case fill < 0:
		return 0
	case fill > width:
		return width
	}
	return fill
}
