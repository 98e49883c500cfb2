package segment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlesster/status-bar/internal/colormap"
	sberrors "github.com/jlesster/status-bar/internal/errors"
	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/producer"
)

var testMetrics = Metrics{
	CharWidth:  8,
	Height:     12,
	Cores:      4,
	Foreground: colormap.MustParseHex("#ffffff"),
}

var grey = [][]float64{{0, 0, 0, 0}, {100, 255, 255, 255}}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0.00 k"},
		{512, "0.50 k"},
		{1536, "1.50 k"},
		{12595, "12.3 k"},
		{512 * 1024, "512. k"},
		{1 << 20, "1.00 M"},
		{3 << 30, "3.00 G"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), "FormatBytes(%d)", tt.in)
	}
}

func TestBuild_Widths(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"cpu summary", Config{Kind: CPU, Width: 10, Spacing: 2}, 3*10 + 2*2},
		{"cpu per core", Config{Kind: CPU, Width: 5, Spacing: 1, PerCore: true, Padding: 2}, 4*5 + 3 + 2},
		{"memory", Config{Kind: Memory, Width: 30}, 30},
		{"battery", Config{Kind: Battery, Width: 10, Spacing: 2}, 10 + 2 + 8},
		{"temp", Config{Kind: Temp}, 6 * 8},
		{"network", Config{Kind: Network, Spacing: 4}, 12*8 + 4},
		{"clock", Config{Kind: Clock, Format: "15:04"}, 5 * 8},
		{"clock default format", Config{Kind: Clock}, 19 * 8},
		{"clock widest month", Config{Kind: Clock, Format: "January 2"}, len("September 22") * 8},
		{"clock widest weekday", Config{Kind: Clock, Format: "Monday"}, len("Wednesday") * 8},
		{"temp gauge", Config{Kind: Temp, Width: 20, Min: 30, Max: 90, Padding: 1}, 21},
		{"volume", Config{Kind: Volume, Width: 15}, 15},
		{"stdin", Config{Kind: Stdin, Chars: 20, Padding: 3}, 20*8 + 3},
		{"window default", Config{Kind: Window}, 40 * 8},
		{"workspaces", Config{Kind: Workspaces, Chars: 9}, 9 * 8},
		{"rainbow", Config{Kind: Rainbow, Width: 100}, 100},
		{"disk", Config{Kind: Disk, Width: 20}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build(tt.cfg, testMetrics)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Width())
		})
	}
}

func TestBuild_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Kind: "speaker"}},
		{"gauge without width", Config{Kind: Memory}},
		{"short colormap", Config{Kind: CPU, Width: 5, Colormap: [][]float64{{0, 0, 0, 0}}}},
		{"unsorted colormap", Config{Kind: CPU, Width: 5, Colormap: [][]float64{{50, 0, 0, 0}, {10, 1, 1, 1}}}},
		{"bad colour", Config{Kind: Clock, Color: "red"}},
		{"negative padding", Config{Kind: Memory, Width: 10, Padding: -20}},
		{"negative spacing", Config{Kind: CPU, Width: 5, Spacing: -3}},
		{"negative height", Config{Kind: Memory, Width: 10, Height: -1}},
		{"negative chars", Config{Kind: Window, Chars: -4}},
		{"temp gauge without range", Config{Kind: Temp, Width: 10}},
		{"temp gauge inverted range", Config{Kind: Temp, Width: 10, Min: 90, Max: 30}},
		{"bad mute colour", Config{Kind: Volume, Width: 10, MuteColor: "purple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.cfg, testMetrics)
			require.Error(t, err)
			assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig), "got %v", err)
		})
	}
}

func TestBuild_ZeroWidthIsConfigError(t *testing.T) {
	m := testMetrics
	m.CharWidth = 0

	_, err := Build(Config{Kind: Clock}, m)
	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig), "got %v", err)

	s, err := Build(Config{Kind: Clock, Padding: 4}, m)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Width())
}

func TestBuild_VolumeDefaults(t *testing.T) {
	s := mustBuild(t, Config{Kind: Volume, Width: 10})
	assert.Equal(t, DefaultChannel, s.Config().Channel)
	assert.Equal(t, DefaultMuteColor, s.Config().MuteColor)
}

func mustBuild(t *testing.T, cfg Config) *Segment {
	t.Helper()
	s, err := Build(cfg, testMetrics)
	require.NoError(t, err)
	return s
}

func TestRender_Dzen(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		value any
		want  string
	}{
		{
			"memory gauge",
			Config{Kind: Memory, Width: 10, Colormap: grey},
			producer.Memory{Total: 100, Available: 25},
			"^fg(#bfbfbf)^r(8x12)^ro(2x12)\n",
		},
		{
			"battery charging glyph",
			Config{Kind: Battery, Width: 10, Spacing: 2},
			producer.Battery{Charge: 0.5, State: producer.BatteryCharging},
			"^fg(#808000)^r(5x12)^ro(5x12)^r(2x0)^fg(#00ff00)+\n",
		},
		{
			"battery full is blank",
			Config{Kind: Battery, Width: 4, Colormap: grey},
			producer.Battery{Charge: 1, State: producer.BatteryFull},
			"^fg(#ffffff)^r(4x12)^ro(0x12)^fg(#00ffff) \n",
		},
		{
			"battery icon follows charge",
			Config{Kind: Battery, Width: 10, Spacing: 2, Icons: true, Colormap: grey},
			producer.Battery{Charge: 0.5, State: producer.BatteryDischarging},
			"^fg(#808080)^r(5x12)^ro(5x12)^r(2x0)^fg(#808080)󰁿\n",
		},
		{
			"battery icon charging",
			Config{Kind: Battery, Width: 4, Icons: true, Colormap: grey},
			producer.Battery{Charge: 0.05, State: producer.BatteryCharging},
			"^fg(#0d0d0d)^r(0x12)^ro(4x12)^fg(#0d0d0d)󰂄\n",
		},
		{
			"volume",
			Config{Kind: Volume, Width: 10, Colormap: grey},
			producer.Volume{Level: 0.5},
			"^fg(#808080)^r(5x12)^ro(5x12)\n",
		},
		{
			"volume muted",
			Config{Kind: Volume, Width: 10, Colormap: grey},
			producer.Volume{Level: 0.5, Muted: true},
			"^fg(#8200c8)^r(5x12)^ro(5x12)\n",
		},
		{
			"temperature gauge",
			Config{Kind: Temp, Width: 10, Min: 30, Max: 80, Colormap: grey},
			producer.Temperature{Max: 55},
			"^fg(#808080)^r(5x12)^ro(5x12)\n",
		},
		{
			"temperature gauge clamps above max",
			Config{Kind: Temp, Width: 10, Min: 30, Max: 80, Colormap: grey},
			producer.Temperature{Max: 95},
			"^fg(#ffffff)^r(10x12)^ro(0x12)\n",
		},
		{
			"temperature gauge missing",
			Config{Kind: Temp, Width: 10, Min: 30, Max: 80},
			producer.Temperature{Max: producer.NoTemperature},
			"^fg(#888888)^r(0x12)^ro(10x12)\n",
		},
		{
			"temperature",
			Config{Kind: Temp, Colormap: grey},
			producer.Temperature{Max: 50},
			"^fg(#808080) 50 °C\n",
		},
		{
			"temperature missing",
			Config{Kind: Temp},
			producer.Temperature{Max: producer.NoTemperature},
			"^fg(#888888)  ? °C\n",
		},
		{
			"clock",
			Config{Kind: Clock, Format: "15:04"},
			time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC),
			"^fg(#ffffff)09:05\n",
		},
		{
			"stdin passes markup through",
			Config{Kind: Stdin, Chars: 10},
			"^fg(#ff0000)hi",
			"^fg(#ffffff)^fg(#ff0000)hi\n",
		},
		{
			"window title truncated",
			Config{Kind: Window, Chars: 6},
			producer.Window{Title: "a long title"},
			"^fg(#ffffff)a lon…\n",
		},
		{
			"workspaces highlight focused and stop at width",
			Config{Kind: Workspaces, Chars: 7, Color: "#00ff00"},
			producer.Window{Workspace: 2, Workspaces: []int{1, 2, 3}},
			"^fg(#888888) 1 ^fg(#00ff00) 2 \n",
		},
		{
			"cpu per core pads missing cores",
			Config{Kind: CPU, Width: 2, PerCore: true, Colormap: grey},
			producer.CPU{Cores: []float64{1, 0}},
			"^fg(#ffffff)^r(2x12)^ro(0x12)^fg(#000000)^r(0x12)^ro(2x12)" +
				"^fg(#000000)^r(0x12)^ro(2x12)^fg(#000000)^r(0x12)^ro(2x12)\n",
		},
		{
			"wrong value type is blank",
			Config{Kind: Memory, Width: 10},
			"not memory",
			"^r(10x0)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustBuild(t, tt.cfg)
			assert.Equal(t, tt.want, markup.Dzen(s.Render(tt.value)))
		})
	}
}

func TestRender_NetworkIsFixedWidth(t *testing.T) {
	s := mustBuild(t, Config{Kind: Network, Spacing: 4})
	line := s.Render(producer.Network{Received: 2048, Transmitted: 3 << 20, Elapsed: time.Second})

	var texts []string
	for _, it := range line {
		if txt, ok := it.(markup.Text); ok {
			texts = append(texts, txt.Text)
		}
	}
	assert.Equal(t, []string{"2.00 k", "3.00 M"}, texts)
	assert.Contains(t, line, markup.Item(markup.Space{Width: 4}))
}

func TestRender_RainbowOneColumnPerPixel(t *testing.T) {
	s := mustBuild(t, Config{Kind: Rainbow, Width: 4, Colormap: grey})
	line := s.Render(nil)

	require.Len(t, line, 4)
	assert.Equal(t, markup.Rect{Color: colormap.RGB(0, 0, 0), Width: 1, Height: 12}, line[0])
	assert.Equal(t, "#808080", line[2].(markup.Rect).Color.Hex())
}

// feed publishes whatever is sent on its channel.
type feed[T any] struct {
	initial T
	ch      chan T
}

func (f *feed[T]) Name() string { return "feed" }
func (f *feed[T]) Initial() T   { return f.initial }

func (f *feed[T]) Produce(ctx context.Context) (T, error) {
	select {
	case v := <-f.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func TestRun_RedrawsOnEveryNewValue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := producer.NewRegistry(ctx, producer.Options{}, nil)
	f := &feed[producer.Memory]{initial: producer.Memory{Total: 100, Available: 100}, ch: make(chan producer.Memory)}
	producer.Provide[producer.Memory](reg, producer.KindMemory, f)

	s := mustBuild(t, Config{Kind: Memory, Width: 10, Colormap: grey})
	drawn := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, reg, func(l markup.Line) error {
			drawn <- markup.Dzen(l)
			return nil
		})
	}()

	assert.Equal(t, "^fg(#000000)^r(0x12)^ro(10x12)\n", <-drawn)
	f.ch <- producer.Memory{Total: 100, Available: 0}
	assert.Equal(t, "^fg(#ffffff)^r(10x12)^ro(0x12)\n", <-drawn)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRun_StaticSegmentDrawsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := producer.NewRegistry(ctx, producer.Options{}, nil)
	s := mustBuild(t, Config{Kind: Rainbow, Width: 2})

	var draws int
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, reg, func(markup.Line) error {
			draws++
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, draws)
	assert.Empty(t, reg.Kinds())
}

func TestRun_DrawErrorStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg := producer.NewRegistry(ctx, producer.Options{}, nil)
	producer.Provide[producer.Memory](reg, producer.KindMemory, &feed[producer.Memory]{ch: make(chan producer.Memory)})

	s := mustBuild(t, Config{Kind: Memory, Width: 4})
	err := s.Run(ctx, reg, func(markup.Line) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}
