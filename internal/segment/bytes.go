package segment

import "fmt"

var byteUnits = []struct {
	size float64
	name string
}{
	{1 << 10, "k"},
	{1 << 20, "M"},
	{1 << 30, "G"},
	{1 << 40, "T"},
	{1 << 50, "P"},
	{1 << 60, "E"},
}

// FormatBytes renders a byte count with three significant digits in binary
// units, e.g. "1.50 k", "12.3 M", "512. k". Values below 1 KiB are shown in k.
func FormatBytes(bytes uint64) string {
	b := float64(bytes)
	unit := byteUnits[0]
	for _, u := range byteUnits {
		if u.size > b {
			break
		}
		unit = u
	}

	value := b / unit.size
	decimals := 0
	switch {
	case value < 10:
		decimals = 2
	case value < 100:
		decimals = 1
	}
	point := ""
	if decimals == 0 {
		point = "."
	}
	return fmt.Sprintf("%.*f%s %s", decimals, value, point, unit.name)
}
