// Package layout places fixed-width segments along a bar.
//
// A region is an ordered list of entries: segments of a known width and
// spacers. A positive spacer is a fixed gap in pixels. A negative spacer is a
// weight; all weighted spacers share whatever width the fixed entries leave
// free. Spacers are never drawn on their own: their width is folded into the
// leading space of the next segment, or the trailing space of the last one.
package layout

import (
	"fmt"

	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// Entry is a segment width or a spacer.
type Entry struct {
	width  int
	spacer bool
}

// Segment is an entry for a segment of the given pixel width.
func Segment(width int) Entry { return Entry{width: width} }

// Spacer is a fixed gap for amount > 0 and a proportional weight for
// amount < 0. Zero is a no-op.
func Spacer(amount int) Entry { return Entry{width: amount, spacer: true} }

// IsSpacer reports whether e is a spacer.
func (e Entry) IsSpacer() bool { return e.spacer }

// Slot is the space allocated to one segment, relative to the start of its
// region. The segment's own content starts at X+Lead.
type Slot struct {
	X     int
	Lead  int
	Width int
	Trail int
}

// Allocated is the total width of the slot.
func (s Slot) Allocated() int { return s.Lead + s.Width + s.Trail }

// End is the first x after the slot.
func (s Slot) End() int { return s.X + s.Allocated() }

// Compute lays out entries left to right and returns one slot per segment
// entry, in order. available bounds the region; nil means the region is
// sized to its content, in which case proportional spacers are rejected.
//
// Proportional spacer i gets |w_i| * leftover / sum|w|. The remainder of the
// integer division goes to the trailing space of the last segment so that the
// slots exactly fill available. Without proportional spacers the leftover is
// not allocated.
func Compute(entries []Entry, available *int) ([]Slot, error) {
	fixed, weights := 0, 0
	for _, e := range entries {
		switch {
		case !e.spacer:
			fixed += e.width
		case e.width > 0:
			fixed += e.width
		case e.width < 0:
			weights += -e.width
		}
	}

	if weights > 0 && available == nil {
		return nil, sberrors.New(sberrors.ErrConfig,
			"proportional spacer in a region sized to its content",
			"Use a fixed spacer (space = N with N > 0) in the center region")
	}

	leftover := 0
	if available != nil {
		if fixed > *available {
			return nil, sberrors.New(sberrors.ErrLayout,
				fmt.Sprintf("out of space: need %d more", fixed-*available),
				fmt.Sprintf("The region is %dpx wide but its segments and spacers need %dpx", *available, fixed))
		}
		leftover = *available - fixed
	}

	var (
		slots   []Slot
		x       int
		pending int
		given   int
	)
	for _, e := range entries {
		if e.spacer {
			w := e.width
			if w < 0 {
				w = -w * leftover / weights
				given += w
			}
			pending += w
			continue
		}
		slots = append(slots, Slot{X: x, Lead: pending, Width: e.width})
		x += pending + e.width
		pending = 0
	}

	if len(slots) == 0 {
		return nil, nil
	}
	last := &slots[len(slots)-1]
	last.Trail = pending
	if weights > 0 {
		last.Trail += leftover - given
	}
	return slots, nil
}

// Width is the total width covered by slots.
func Width(slots []Slot) int {
	if len(slots) == 0 {
		return 0
	}
	return slots[len(slots)-1].End() - slots[0].X
}
