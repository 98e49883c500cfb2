// Package colormap maps scalar metric values to colors through a
// piecewise-linear table of control points.
package colormap

import (
	"fmt"
	"math"

	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// Point is one control point of a Colormap.
type Point struct {
	Key   float64
	Color Color
}

// Colormap interpolates between colors for arbitrary values. It is
// immutable once built and safe for concurrent use.
type Colormap struct {
	points []Point
}

// New builds a Colormap. At least two points are required and keys must be
// strictly increasing.
func New(points ...Point) (*Colormap, error) {
	if len(points) < 2 {
		return nil, sberrors.New(sberrors.ErrConfig,
			fmt.Sprintf("colormap has %d control points, need at least 2", len(points)),
			"Add rows of the form [key, r, g, b] to the colormap table")
	}
	for i := 1; i < len(points); i++ {
		if !(points[i].Key > points[i-1].Key) {
			return nil, sberrors.New(sberrors.ErrConfig,
				fmt.Sprintf("colormap keys must be strictly increasing: %g follows %g", points[i].Key, points[i-1].Key),
				"Sort the colormap table by key and remove duplicate keys")
		}
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return &Colormap{points: cp}, nil
}

// FromTable builds a Colormap from configuration rows of the form
// [key, r, g, b] with 8-bit channels.
func FromTable(rows [][]float64) (*Colormap, error) {
	points := make([]Point, 0, len(rows))
	for i, row := range rows {
		if len(row) != 4 {
			return nil, sberrors.New(sberrors.ErrConfig,
				fmt.Sprintf("colormap row %d has %d values, want 4", i, len(row)),
				"Each row must be [key, r, g, b]")
		}
		for _, ch := range row[1:] {
			if ch < 0 || ch > 255 {
				return nil, sberrors.New(sberrors.ErrConfig,
					fmt.Sprintf("colormap row %d: channel %g out of range", i, ch),
					"Color channels are 0-255")
			}
		}
		points = append(points, Point{
			Key:   row[0],
			Color: RGB(row[1]/255, row[2]/255, row[3]/255),
		})
	}
	return New(points...)
}

// Points returns a copy of the control points.
func (m *Colormap) Points() []Point {
	cp := make([]Point, len(m.points))
	copy(cp, m.points)
	return cp
}

// Map returns the color for val. Values outside the table are clamped to the
// first or last color. Inside, the bracketing pair is found by a linear scan
// from the low end, so the first key >= val wins.
func (m *Colormap) Map(val float64) Color {
	first, last := m.points[0], m.points[len(m.points)-1]
	if math.IsNaN(val) || val <= first.Key {
		return first.Color
	}
	if val >= last.Key {
		return last.Color
	}

	i := 1
	for m.points[i].Key < val && i < len(m.points)-1 {
		i++
	}
	lo, hi := m.points[i-1], m.points[i]
	lower := (hi.Key - val) / (hi.Key - lo.Key)
	upper := 1 - lower

	blend := func(a, b float64) float64 { return lower*a + upper*b }
	return RGB(
		blend(lo.Color.R, hi.Color.R),
		blend(lo.Color.G, hi.Color.G),
		blend(lo.Color.B, hi.Color.B),
	)
}
