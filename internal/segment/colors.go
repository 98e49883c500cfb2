package segment

import (
	"github.com/jlesster/status-bar/internal/colormap"
	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// Default colormaps. Percentages run 0..100, temperatures are in degrees
// Celsius and network rates in bytes per second. A temp gauge maps its
// position between min and max as a percentage.
var (
	loadTable = [][]float64{
		{0, 0, 0, 0},
		{10, 77, 77, 77},
		{30, 179, 204, 64},
		{60, 204, 153, 0},
		{100, 255, 0, 0},
	}
	batteryTable = [][]float64{
		{0, 255, 0, 0},
		{100, 0, 255, 0},
	}
	tempTable = [][]float64{
		{40, 136, 136, 136},
		{70, 204, 153, 0},
		{90, 255, 0, 0},
	}
	rateTable = [][]float64{
		{0, 77, 77, 77},
		{1024, 136, 136, 136},
		{1024 * 1024, 255, 255, 255},
	}
)

// Battery status glyph colours.
var (
	chargingColor    = colormap.MustParseHex("#00ff00")
	dischargingColor = colormap.MustParseHex("#ff0000")
	unknownColor     = colormap.MustParseHex("#00ffff")
)

func defaultTable(cfg Config) [][]float64 {
	switch cfg.Kind {
	case Battery:
		return batteryTable
	case Temp:
		if cfg.Width > 0 {
			return loadTable
		}
		return tempTable
	case Network:
		return rateTable
	}
	return loadTable
}

func buildColormap(cfg Config) (*colormap.Colormap, error) {
	table := cfg.Colormap
	if len(table) == 0 {
		table = defaultTable(cfg)
	}
	cmap, err := colormap.FromTable(table)
	if err != nil {
		return nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
			"bad colormap in "+string(cfg.Kind)+" segment",
			"Give at least two [key, r, g, b] rows with strictly increasing keys")
	}
	return cmap, nil
}
