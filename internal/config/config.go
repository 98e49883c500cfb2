// Package config loads the statusbar configuration from TOML or YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jlesster/status-bar/internal/bar"
	"github.com/jlesster/status-bar/internal/colormap"
	sberrors "github.com/jlesster/status-bar/internal/errors"
	"github.com/jlesster/status-bar/internal/layout"
	"github.com/jlesster/status-bar/internal/screen"
	"github.com/jlesster/status-bar/internal/segment"
)

// Screen sources.
const (
	SourceXrandr  = "xrandr"
	SourceWayland = "wayland"
	SourceStatic  = "static"
)

// Format is a config file syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

type Config struct {
	Font       string `toml:"font" yaml:"font"`
	CharWidth  int    `toml:"char_width" yaml:"char_width"`
	Height     int    `toml:"height" yaml:"height"`
	Background string `toml:"background" yaml:"background"`
	Foreground string `toml:"foreground" yaml:"foreground"`
	LeftGap    int    `toml:"left_gap" yaml:"left_gap"`
	RightGap   int    `toml:"right_gap" yaml:"right_gap"`

	Interval Duration `toml:"interval" yaml:"interval"`
	LogLevel string   `toml:"log_level" yaml:"log_level"`

	ScreenSource string         `toml:"screen_source" yaml:"screen_source"`
	ScreenPoll   Duration       `toml:"screen_poll" yaml:"screen_poll"`
	Screens      []ScreenConfig `toml:"screens,omitempty" yaml:"screens,omitempty"`

	// Backend is the dzen2 binary.
	Backend string `toml:"backend" yaml:"backend"`

	Bars []Bar `toml:"bars" yaml:"bars"`
}

// ScreenConfig is a fixed screen for the static source.
type ScreenConfig struct {
	ID     int `toml:"id" yaml:"id"`
	X      int `toml:"x" yaml:"x"`
	Y      int `toml:"y" yaml:"y"`
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// Bar lists the entries of each region. Screen limits the bar to one screen
// id; without it the bar runs on every screen.
type Bar struct {
	Screen *int    `toml:"screen,omitempty" yaml:"screen,omitempty"`
	Left   []Entry `toml:"left" yaml:"left"`
	Center []Entry `toml:"center" yaml:"center"`
	Right  []Entry `toml:"right" yaml:"right"`
}

// Entry is either {space = N} or a segment table.
type Entry struct {
	Space          int `toml:"space,omitempty" yaml:"space,omitempty"`
	segment.Config `yaml:",inline"`
}

// DefaultConfig returns the bar used when no config file exists.
func DefaultConfig() *Config {
	gauge := func(kind segment.Kind) Entry {
		return Entry{Config: segment.Config{Kind: kind, Width: 40, Spacing: 2}}
	}
	return &Config{
		Font:         "monospace-9",
		CharWidth:    7,
		Height:       16,
		Background:   "#16121B",
		Foreground:   "#E9DFEE",
		LeftGap:      0,
		RightGap:     0,
		Interval:     Duration{time.Second},
		LogLevel:     "info",
		ScreenSource: SourceXrandr,
		ScreenPoll:   Duration{screen.DefaultPoll},
		Backend:      "dzen2",
		Bars: []Bar{{
			Left: []Entry{
				{Config: segment.Config{Kind: segment.Workspaces, Color: "#D7BAFF"}},
				{Space: 10},
				{Config: segment.Config{Kind: segment.Window}},
			},
			Center: []Entry{
				{Config: segment.Config{Kind: segment.Clock, Color: "#D7BAFF"}},
			},
			Right: []Entry{
				gauge(segment.CPU),
				{Space: 10},
				gauge(segment.Memory),
				{Space: 10},
				{Config: segment.Config{Kind: segment.Network, Spacing: 8}},
				{Space: 10},
				{Config: segment.Config{Kind: segment.Temp}},
				{Space: 10},
				gauge(segment.Battery),
				{Space: 5},
			},
		}},
	}
}

// SearchPaths returns the locations Load tries, in order.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "status-bar", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "status-bar", "config.toml"))
	}
	return paths
}

// Load reads path, or the first existing file of SearchPaths when path is
// empty. With no file at all it returns DefaultConfig. The second result
// is the file that was read, empty for the defaults.
func Load(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := LoadFromFile(path)
		return cfg, path, err
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := LoadFromFile(p)
			return cfg, p, err
		}
	}
	return DefaultConfig(), "", nil
}

// LoadFromFile reads one file. The extension picks the format: .yaml and
// .yml are YAML, everything else TOML.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
			"cannot open config file "+path, "Check the path given to --config")
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, FormatOf(path))
	if err != nil {
		return nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
			"cannot parse config file "+path, "Fix the syntax error above")
	}
	return cfg, nil
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return TOML
}

// LoadFromReader decodes r over DefaultConfig. Keys missing from r keep
// their defaults; a bars list replaces the default bar.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	// The TOML decoder reuses slice elements that already exist, which would
	// merge the file's bars into the default one.
	defaultBars := cfg.Bars
	cfg.Bars = nil
	defer func() {
		if cfg.Bars == nil {
			cfg.Bars = defaultBars
		}
	}()

	switch format {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
func (c *Config) Encode(w io.Writer, format Format) error {
	if format == YAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks the whole configuration, including every segment, so that
// a bad file is reported before any bar starts.
func (c *Config) Validate() error {
	if c.CharWidth <= 0 {
		return sberrors.Newf(sberrors.ErrConfig, "char_width must be positive, got %d", c.CharWidth)
	}
	if c.Height <= 0 {
		return sberrors.Newf(sberrors.ErrConfig, "height must be positive, got %d", c.Height)
	}
	if c.LeftGap < 0 || c.RightGap < 0 {
		return sberrors.New(sberrors.ErrConfig, "left_gap and right_gap cannot be negative", "")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, field := range []struct{ name, value string }{
		{"background", c.Background},
		{"foreground", c.Foreground},
	} {
		if field.value == "" {
			continue
		}
		if _, err := colormap.ParseHex(field.value); err != nil {
			return sberrors.WrapWithCode(err, sberrors.ErrConfig,
				"bad "+field.name+" colour", "Use the form #rrggbb")
		}
	}

	switch c.ScreenSource {
	case SourceXrandr, SourceWayland:
	case SourceStatic:
		if len(c.Screens) == 0 {
			return sberrors.New(sberrors.ErrConfig, "screen_source is static but no screens are listed",
				"Add [[screens]] tables with id, x, y and width")
		}
		for _, s := range c.Screens {
			if s.Width <= 0 {
				return sberrors.Newf(sberrors.ErrConfig, "screen %d has no width", s.ID)
			}
		}
	default:
		return sberrors.New(sberrors.ErrConfig, "unknown screen_source "+fmt.Sprintf("%q", c.ScreenSource),
			"Valid sources: xrandr, wayland, static")
	}

	if len(c.Bars) == 0 {
		return sberrors.New(sberrors.ErrConfig, "no bars configured", "Add at least one [[bars]] table")
	}
	metrics := c.Metrics()
	metrics.Cores = 1
	for i, b := range c.Bars {
		for _, region := range []struct {
			name    string
			entries []Entry
		}{{"left", b.Left}, {"center", b.Center}, {"right", b.Right}} {
			for j, e := range region.entries {
				if err := validateEntry(e, region.name, metrics); err != nil {
					return fmt.Errorf("bars[%d].%s[%d]: %w", i, region.name, j, err)
				}
			}
		}
	}
	return nil
}

func validateEntry(e Entry, region string, m segment.Metrics) error {
	if e.Kind == "" {
		if e.Space == 0 {
			return sberrors.New(sberrors.ErrConfig, "entry has neither a type nor a space",
				"Use {space = N} or {type = \"...\"}")
		}
		if e.Space < 0 && region == "center" {
			return sberrors.New(sberrors.ErrConfig, "proportional spacer in the center region",
				"The center region is sized to its content; use a positive space")
		}
		return nil
	}
	if e.Space != 0 {
		return sberrors.New(sberrors.ErrConfig, "entry has both a type and a space",
			"Put the spacer in its own entry")
	}
	_, err := segment.Build(e.Config, m)
	return err
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, sberrors.New(sberrors.ErrConfig, "unknown log_level "+fmt.Sprintf("%q", c.LogLevel),
			"Valid levels: debug, info, warn, error")
	}
	return level, nil
}

// Metrics returns the font and bar dimensions segments are built against.
func (c *Config) Metrics() segment.Metrics {
	m := segment.Metrics{CharWidth: c.CharWidth, Height: c.Height}
	if fg, err := colormap.ParseHex(c.Foreground); err == nil {
		m.Foreground = fg
	} else {
		m.Foreground = colormap.RGB(1, 1, 1)
	}
	return m
}

// Options returns the settings shared by every bar.
func (c *Config) Options() bar.Options {
	return bar.Options{
		Metrics: c.Metrics(),
		Gaps:    layout.Gaps{Left: c.LeftGap, Right: c.RightGap},
	}
}

// Definitions converts the bars to their runtime form.
func (c *Config) Definitions() []bar.Definition {
	defs := make([]bar.Definition, 0, len(c.Bars))
	for _, b := range c.Bars {
		defs = append(defs, bar.Definition{
			Screen: b.Screen,
			Left:   entries(b.Left),
			Center: entries(b.Center),
			Right:  entries(b.Right),
		})
	}
	return defs
}

func entries(in []Entry) []bar.Entry {
	out := make([]bar.Entry, 0, len(in))
	for _, e := range in {
		out = append(out, bar.Entry{Space: e.Space, Segment: e.Config})
	}
	return out
}

// StaticScreens returns the configured screens for the static source.
func (c *Config) StaticScreens() screen.Static {
	out := make(screen.Static, 0, len(c.Screens))
	for _, s := range c.Screens {
		out = append(out, screen.Screen{ID: s.ID, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height})
	}
	return out
}
