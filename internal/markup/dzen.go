package markup

import (
	"fmt"
	"strings"
)

// Dzen encodes l as one newline-terminated dzen2 input line.
func Dzen(l Line) string {
	var b strings.Builder
	for _, it := range l {
		writeDzen(&b, it)
	}
	b.WriteByte('\n')
	return b.String()
}

func writeDzen(b *strings.Builder, it Item) {
	switch v := it.(type) {
	case Bar:
		fill := Fill(v.Value, v.Width)
		fmt.Fprintf(b, "^fg(%s)^r(%dx%d)^ro(%dx%d)", v.Color.Hex(), fill, v.Height, v.Width-fill, v.Height)
	case Space:
		fmt.Fprintf(b, "^r(%dx0)", v.Width)
	case Fg:
		fmt.Fprintf(b, "^fg(%s)", v.Color.Hex())
	case Text:
		// A literal caret starts a command in dzen2; doubling it escapes it.
		b.WriteString(strings.ReplaceAll(v.Text, "^", "^^"))
	case Raw:
		b.WriteString(v.Text)
	case Rect:
		fmt.Fprintf(b, "^fg(%s)^r(%dx%d)", v.Color.Hex(), v.Width, v.Height)
	case Sep:
		fmt.Fprintf(b, "^fg(%s)^r(2x%d)", SepColor.Hex(), v.Height)
	}
}
