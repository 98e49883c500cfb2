package segment

import "github.com/jlesster/status-bar/internal/producer"

// batteryIcon picks a nerd-font battery glyph for a charge level in percent.
func batteryIcon(level int, state producer.BatteryState) string {
	if state == producer.BatteryCharging {
		return "󰂄"
	}

	switch {
	case level >= 90:
		return "󰁹" // Full
	case level >= 80:
		return "󰂂"
	case level >= 70:
		return "󰂁"
	case level >= 60:
		return "󰂀"
	case level >= 50:
		return "󰁿"
	case level >= 40:
		return "󰁾"
	case level >= 30:
		return "󰁽"
	case level >= 20:
		return "󰁼"
	case level >= 10:
		return "󰁻"
	default:
		return "󰁺" // Critical
	}
}

// batteryGlyph is the plain-text status marker.
func batteryGlyph(state producer.BatteryState) string {
	switch state {
	case producer.BatteryCharging:
		return "+"
	case producer.BatteryDischarging:
		return "-"
	case producer.BatteryEmpty:
		return "!"
	case producer.BatteryFull:
		return " "
	default:
		return "*"
	}
}
