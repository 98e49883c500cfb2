package colormap

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB triplet with channels normalized to [0, 1].
type Color struct {
	colorful.Color
}

// RGB builds a Color from normalized channels.
func RGB(r, g, b float64) Color {
	return Color{colorful.Color{R: r, G: g, B: b}}
}

// RGB255 builds a Color from 8-bit channels.
func RGB255(r, g, b uint8) Color {
	return RGB(float64(r)/255, float64(g)/255, float64(b)/255)
}

// ParseHex parses a color in the form "#rrggbb".
func ParseHex(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{c}, nil
}

// MustParseHex is ParseHex for compile-time constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the color as "#rrggbb", the form dzen2 expects.
func (c Color) String() string {
	return c.Hex()
}
