package segment

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jlesster/status-bar/internal/colormap"
	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/producer"
)

// Render draws v, which must be the snapshot type of the segment's kind.
// A value of the wrong type renders as blank space of the segment's width.
func (s *Segment) Render(v any) markup.Line {
	switch s.cfg.Kind {
	case CPU:
		if c, ok := v.(producer.CPU); ok {
			return s.renderCPU(c)
		}
	case Memory:
		if m, ok := v.(producer.Memory); ok {
			return s.renderMemory(m)
		}
	case Network:
		if n, ok := v.(producer.Network); ok {
			return s.renderNetwork(n)
		}
	case Battery:
		if b, ok := v.(producer.Battery); ok {
			return s.renderBattery(b)
		}
	case Temp:
		if t, ok := v.(producer.Temperature); ok {
			return s.renderTemp(t)
		}
	case Clock:
		if t, ok := v.(time.Time); ok {
			return s.renderClock(t)
		}
	case Stdin:
		if line, ok := v.(string); ok {
			return s.renderLine(line)
		}
	case Brightness:
		if b, ok := v.(producer.Brightness); ok {
			return s.renderBrightness(b)
		}
	case Disk:
		if d, ok := v.(producer.Disk); ok {
			return s.renderDisk(d)
		}
	case Window:
		if w, ok := v.(producer.Window); ok {
			return s.renderWindow(w)
		}
	case Workspaces:
		if w, ok := v.(producer.Window); ok {
			return s.renderWorkspaces(w)
		}
	case Volume:
		if vol, ok := v.(producer.Volume); ok {
			return s.renderVolume(vol)
		}
	case Rainbow:
		return s.renderRainbow()
	}
	return markup.Line{markup.Space{Width: s.width}}
}

// gauge draws a fraction in [0, 1], coloured by the colormap at percent.
func (s *Segment) gauge(fraction float64) markup.Bar {
	return markup.Bar{
		Value:  fraction,
		Color:  s.cmap.Map(fraction * 100),
		Width:  s.cfg.Width,
		Height: s.height,
	}
}

func (s *Segment) gauges(values []float64) markup.Line {
	line := make(markup.Line, 0, 2*len(values))
	for i, v := range values {
		if i > 0 && s.cfg.Spacing > 0 {
			line = append(line, markup.Space{Width: s.cfg.Spacing})
		}
		line = append(line, s.gauge(v))
	}
	return line
}

func (s *Segment) renderCPU(c producer.CPU) markup.Line {
	if !s.cfg.PerCore {
		return s.gauges([]float64{c.Min, c.Avg, c.Max})
	}
	// The gauge count is fixed at build time; missing cores read as idle.
	values := make([]float64, s.cores)
	copy(values, c.Cores)
	return s.gauges(values)
}

func (s *Segment) renderMemory(m producer.Memory) markup.Line {
	return markup.Line{s.gauge(m.UsedFraction())}
}

func (s *Segment) renderBrightness(b producer.Brightness) markup.Line {
	return markup.Line{s.gauge(b.Fraction)}
}

func (s *Segment) renderDisk(d producer.Disk) markup.Line {
	return markup.Line{s.gauge(d.UsedFraction)}
}

func (s *Segment) renderBattery(b producer.Battery) markup.Line {
	line := markup.Line{s.gauge(b.Charge)}
	if s.cfg.Spacing > 0 {
		line = append(line, markup.Space{Width: s.cfg.Spacing})
	}

	if s.cfg.Icons {
		icon := batteryIcon(int(b.Charge*100+0.5), b.State)
		return append(line, markup.Fg{Color: s.cmap.Map(b.Charge * 100)}, markup.Text{Text: icon})
	}

	var color colormap.Color
	switch b.State {
	case producer.BatteryCharging:
		color = chargingColor
	case producer.BatteryDischarging, producer.BatteryEmpty:
		color = dischargingColor
	default:
		color = unknownColor
	}
	return append(line, markup.Fg{Color: color}, markup.Text{Text: batteryGlyph(b.State)})
}

func (s *Segment) renderTemp(t producer.Temperature) markup.Line {
	if s.tempGauge() {
		return s.renderTempGauge(t)
	}
	if t.Max == producer.NoTemperature {
		return markup.Line{markup.Fg{Color: markup.SepColor}, markup.Text{Text: "  ? °C"}}
	}
	return markup.Line{
		markup.Fg{Color: s.cmap.Map(t.Max)},
		markup.Text{Text: fmt.Sprintf("%3.0f °C", t.Max)},
	}
}

// renderTempGauge places the reading between the configured min and max.
func (s *Segment) renderTempGauge(t producer.Temperature) markup.Line {
	if t.Max == producer.NoTemperature {
		return markup.Line{markup.Bar{Color: markup.SepColor, Width: s.cfg.Width, Height: s.height}}
	}
	fraction := (t.Max - s.cfg.Min) / (s.cfg.Max - s.cfg.Min)
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	return markup.Line{s.gauge(fraction)}
}

func (s *Segment) renderVolume(v producer.Volume) markup.Line {
	g := s.gauge(v.Level)
	if v.Muted {
		g.Color = s.mute
	}
	return markup.Line{g}
}

func (s *Segment) renderNetwork(n producer.Network) markup.Line {
	rx, tx := n.RxRate(), n.TxRate()
	line := markup.Line{
		markup.Fg{Color: s.cmap.Map(rx)},
		markup.Text{Text: runewidth.FillLeft(FormatBytes(uint64(rx)), rateChars)},
	}
	if s.cfg.Spacing > 0 {
		line = append(line, markup.Space{Width: s.cfg.Spacing})
	}
	return append(line,
		markup.Fg{Color: s.cmap.Map(tx)},
		markup.Text{Text: runewidth.FillLeft(FormatBytes(uint64(tx)), rateChars)},
	)
}

func (s *Segment) renderClock(t time.Time) markup.Line {
	return s.textLine(t.Format(s.cfg.Format))
}

// renderLine passes external input through untouched: it may carry its
// own dzen2 colour commands.
func (s *Segment) renderLine(line string) markup.Line {
	return markup.Line{markup.Fg{Color: s.text}, markup.Raw{Text: line}}
}

func (s *Segment) renderWindow(w producer.Window) markup.Line {
	return s.textLine(w.Title)
}

func (s *Segment) renderWorkspaces(w producer.Window) markup.Line {
	limit := s.chars()
	line := make(markup.Line, 0, 2*len(w.Workspaces))
	used := 0
	for _, id := range w.Workspaces {
		label := fmt.Sprintf(" %d ", id)
		if used+runewidth.StringWidth(label) > limit {
			break
		}
		used += runewidth.StringWidth(label)

		color := markup.SepColor
		if id == w.Workspace {
			color = s.text
		}
		line = append(line, markup.Fg{Color: color}, markup.Text{Text: label})
	}
	return line
}

// renderRainbow draws the colormap itself, one pixel column per step.
func (s *Segment) renderRainbow() markup.Line {
	line := make(markup.Line, 0, s.cfg.Width)
	for i := 0; i < s.cfg.Width; i++ {
		key := float64(i) / float64(s.cfg.Width) * 100
		line = append(line, markup.Rect{Color: s.cmap.Map(key), Width: 1, Height: s.height})
	}
	return line
}

func (s *Segment) textLine(text string) markup.Line {
	return markup.Line{
		markup.Fg{Color: s.text},
		markup.Text{Text: runewidth.Truncate(text, s.chars(), "…")},
	}
}
