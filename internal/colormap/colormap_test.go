package colormap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sberrors "github.com/jlesster/status-bar/internal/errors"
)

var (
	black = RGB(0, 0, 0)
	white = RGB(1, 1, 1)
	red   = RGB(1, 0, 0)
	green = RGB(0, 1, 0)
)

func TestMap_Clamps(t *testing.T) {
	m, err := New(Point{0, black}, Point{50, red}, Point{100, white})
	require.NoError(t, err)

	assert.Equal(t, m.Map(0), m.Map(-5))
	assert.Equal(t, m.Map(100), m.Map(150))
	assert.Equal(t, black, m.Map(-5))
	assert.Equal(t, white, m.Map(150))
}

func TestMap_Midpoint(t *testing.T) {
	m, err := New(Point{0, black}, Point{100, white})
	require.NoError(t, err)

	got := m.Map(50)
	assert.InDelta(t, 0.5, got.R, 1e-12)
	assert.InDelta(t, 0.5, got.G, 1e-12)
	assert.InDelta(t, 0.5, got.B, 1e-12)
}

func TestMap_Interpolation(t *testing.T) {
	m, err := New(Point{0, red}, Point{10, green}, Point{20, white})
	require.NoError(t, err)

	tests := []struct {
		name string
		val  float64
		want Color
	}{
		{"exact first key", 0, red},
		{"exact middle key", 10, green},
		{"quarter into first span", 2.5, RGB(0.75, 0.25, 0)},
		{"half into second span", 15, RGB(0.5, 1, 0.5)},
		{"exact last key", 20, white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Map(tt.val)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
		})
	}
}

func TestMap_NaNReturnsFirstColor(t *testing.T) {
	m, err := New(Point{0, red}, Point{1, green})
	require.NoError(t, err)

	var zero float64
	assert.Equal(t, red, m.Map(zero/zero))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
	}{
		{"empty", nil},
		{"single point", []Point{{0, red}}},
		{"equal keys", []Point{{0, red}, {0, green}}},
		{"decreasing keys", []Point{{10, red}, {5, green}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.points...)
			require.Error(t, err)
			assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
		})
	}
}

func TestFromTable(t *testing.T) {
	m, err := FromTable([][]float64{
		{0, 0, 0, 0},
		{100, 255, 0, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", m.Map(100).Hex())
	assert.Equal(t, "#000000", m.Map(0).Hex())
	assert.Len(t, m.Points(), 2)

	_, err = FromTable([][]float64{{0, 0, 0}, {1, 1, 1, 1}})
	assert.Error(t, err)

	_, err = FromTable([][]float64{{0, 0, 0, 300}, {1, 1, 1, 1}})
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#1a2b3c")
	require.NoError(t, err)
	assert.Equal(t, "#1a2b3c", c.String())

	for _, bad := range []string{"", "1a2b3c", "#1a2b3", "#1a2b3c4", "#zzzzzz", "#abc"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestRGB255(t *testing.T) {
	assert.Equal(t, "#888888", RGB255(0x88, 0x88, 0x88).Hex())
}
