// Package segment turns producer snapshots into fixed-width display lists.
//
// A segment is described by a Config, a plain value that is copied for every
// screen the bar runs on. Build resolves a Config against the font metrics
// into a Segment whose width never changes afterwards, which is what lets the
// layout be computed once per screen configuration.
package segment

import (
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jlesster/status-bar/internal/colormap"
	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// Kind selects what a segment shows.
type Kind string

const (
	CPU        Kind = "cpu"
	Memory     Kind = "memory"
	Network    Kind = "network"
	Battery    Kind = "battery"
	Temp       Kind = "temp"
	Clock      Kind = "clock"
	Stdin      Kind = "stdin"
	Brightness Kind = "brightness"
	Disk       Kind = "disk"
	Window     Kind = "window"
	Workspaces Kind = "workspaces"
	Rainbow    Kind = "rainbow"
	Volume     Kind = "volume"
)

// Kinds lists every supported kind.
var Kinds = []Kind{CPU, Memory, Network, Battery, Temp, Clock, Stdin, Brightness, Disk, Window, Workspaces, Rainbow, Volume}

// Config describes one segment. Unset fields fall back to per-kind defaults.
type Config struct {
	Kind Kind `toml:"type" yaml:"type"`

	// Width is the pixel width of one gauge.
	Width int `toml:"width" yaml:"width"`
	// Height overrides the bar height for gauges.
	Height int `toml:"height" yaml:"height"`
	// Spacing is the gap between the parts of a segment.
	Spacing int `toml:"spacing" yaml:"spacing"`
	// Padding is added to the computed width.
	Padding int `toml:"padding" yaml:"padding"`
	// Chars is the text width in characters of text segments.
	Chars int `toml:"chars" yaml:"chars"`

	// Format is the clock layout in Go's reference time notation.
	Format string `toml:"format" yaml:"format"`
	// Color is the text colour, "#rrggbb".
	Color string `toml:"color" yaml:"color"`
	// Colormap rows are [key, r, g, b] with channels in 0..255.
	Colormap [][]float64 `toml:"colormap,omitempty" yaml:"colormap,omitempty"`

	// PerCore draws one CPU gauge per core instead of min/avg/max.
	PerCore bool `toml:"per_core" yaml:"per_core"`
	// Path is the mount point of a disk segment.
	Path string `toml:"path" yaml:"path"`
	// Icons uses nerd-font battery icons instead of status glyphs.
	Icons bool `toml:"icons" yaml:"icons"`

	// Min and Max bound the temperature gauge drawn when a temp segment
	// has a width.
	Min float64 `toml:"min" yaml:"min"`
	Max float64 `toml:"max" yaml:"max"`

	// Card and Channel select the ALSA mixer control of a volume segment.
	Card    int    `toml:"card" yaml:"card"`
	Channel string `toml:"channel" yaml:"channel"`
	// MuteColor replaces the colormap while the channel is muted.
	MuteColor string `toml:"mute_color" yaml:"mute_color"`
}

// Metrics holds the font and bar dimensions segments are sized against.
type Metrics struct {
	CharWidth  int
	Height     int
	Cores      int
	Foreground colormap.Color
}

const (
	DefaultClockFormat = "Mon 02 Jan 15:04:05"
	DefaultChannel     = "Master"
	DefaultMuteColor   = "#8200c8"
	defaultTextChars   = 40
	defaultWSChars     = 15
	tempChars          = 6
	rateChars          = 6
)

// Segment is a built, fixed-width segment.
type Segment struct {
	cfg    Config
	width  int
	height int
	charW  int
	cores  int
	text   colormap.Color
	mute   colormap.Color
	cmap   *colormap.Colormap
}

// Build validates cfg and computes the segment's width.
func Build(cfg Config, m Metrics) (*Segment, error) {
	s := &Segment{
		cfg:    cfg,
		height: m.Height,
		charW:  m.CharWidth,
		cores:  m.Cores,
		text:   m.Foreground,
	}
	if cfg.Padding < 0 || cfg.Spacing < 0 || cfg.Height < 0 || cfg.Chars < 0 {
		return nil, sberrors.Newf(sberrors.ErrConfig,
			"%s segment sizes must not be negative (padding %d, spacing %d, height %d, chars %d)",
			cfg.Kind, cfg.Padding, cfg.Spacing, cfg.Height, cfg.Chars)
	}
	if cfg.Height > 0 {
		s.height = cfg.Height
	}
	if s.cores <= 0 {
		s.cores = 1
	}
	if cfg.Color != "" {
		c, err := colormap.ParseHex(cfg.Color)
		if err != nil {
			return nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
				"bad colour in "+string(cfg.Kind)+" segment", "Use the form #rrggbb")
		}
		s.text = c
	}

	if usesColormap(cfg.Kind) {
		cmap, err := buildColormap(cfg)
		if err != nil {
			return nil, err
		}
		s.cmap = cmap
	}

	if isGauge(cfg.Kind) && cfg.Width <= 0 {
		return nil, sberrors.Newf(sberrors.ErrConfig, "%s segment needs a positive width, got %d", cfg.Kind, cfg.Width)
	}
	if cfg.Kind == Disk && cfg.Path == "" {
		s.cfg.Path = "/"
	}
	if cfg.Kind == Clock && cfg.Format == "" {
		s.cfg.Format = DefaultClockFormat
	}
	if cfg.Kind == Temp && cfg.Width > 0 && cfg.Max <= cfg.Min {
		return nil, sberrors.Newf(sberrors.ErrConfig,
			"temp gauge needs max above min, got min %g max %g", cfg.Min, cfg.Max)
	}
	if cfg.Kind == Volume {
		if err := s.volumeDefaults(); err != nil {
			return nil, err
		}
	}

	w, err := s.contentWidth()
	if err != nil {
		return nil, err
	}
	s.width = w + cfg.Padding
	if s.width <= 0 {
		return nil, sberrors.Newf(sberrors.ErrConfig,
			"%s segment has no width (character width %d)", cfg.Kind, s.charW)
	}
	return s, nil
}

func (s *Segment) volumeDefaults() error {
	if s.cfg.Channel == "" {
		s.cfg.Channel = DefaultChannel
	}
	if s.cfg.MuteColor == "" {
		s.cfg.MuteColor = DefaultMuteColor
	}
	c, err := colormap.ParseHex(s.cfg.MuteColor)
	if err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrConfig,
			"bad mute_color in volume segment", "Use the form #rrggbb")
	}
	s.mute = c
	return nil
}

func (s *Segment) contentWidth() (int, error) {
	cfg := s.cfg
	switch cfg.Kind {
	case CPU:
		n := 3
		if cfg.PerCore {
			n = s.cores
		}
		return n*cfg.Width + (n-1)*cfg.Spacing, nil
	case Memory, Brightness, Disk, Rainbow, Volume:
		return cfg.Width, nil
	case Battery:
		return cfg.Width + cfg.Spacing + s.charW, nil
	case Temp:
		if s.tempGauge() {
			return cfg.Width, nil
		}
		return tempChars * s.charW, nil
	case Network:
		return 2*rateChars*s.charW + cfg.Spacing, nil
	case Clock:
		return s.chars() * s.charW, nil
	case Stdin, Window, Workspaces:
		return s.chars() * s.charW, nil
	}
	return 0, sberrors.New(sberrors.ErrConfig, "unknown segment type "+quote(string(cfg.Kind)),
		"Valid types: cpu, memory, network, battery, temp, clock, stdin, brightness, disk, window, workspaces, rainbow, volume")
}

// chars is the fixed text width in cells.
func (s *Segment) chars() int {
	if s.cfg.Chars > 0 {
		return s.cfg.Chars
	}
	switch s.cfg.Kind {
	case Clock:
		return widestDate(s.cfg.Format)
	case Workspaces:
		return defaultWSChars
	}
	return defaultTextChars
}

// widestDate is the widest rendering of format over every month and
// weekday, with two-digit day and time fields.
func widestDate(format string) int {
	widest := 0
	for m := time.January; m <= time.December; m++ {
		for d := 22; d <= 28; d++ {
			t := time.Date(2006, m, d, 23, 59, 59, 0, time.UTC)
			if w := runewidth.StringWidth(t.Format(format)); w > widest {
				widest = w
			}
		}
	}
	return widest
}

// Width returns the segment's fixed pixel width.
func (s *Segment) Width() int { return s.width }

// Kind returns the segment's kind.
func (s *Segment) Kind() Kind { return s.cfg.Kind }

// Config returns the configuration the segment was built from.
func (s *Segment) Config() Config { return s.cfg }

func isGauge(k Kind) bool {
	switch k {
	case CPU, Memory, Battery, Brightness, Disk, Rainbow, Volume:
		return true
	}
	return false
}

// tempGauge reports whether a temp segment draws a bar instead of text.
func (s *Segment) tempGauge() bool { return s.cfg.Kind == Temp && s.cfg.Width > 0 }

func usesColormap(k Kind) bool {
	return isGauge(k) || k == Temp || k == Network
}

func quote(s string) string { return "\"" + s + "\"" }
