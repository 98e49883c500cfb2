package layout

import (
	"fmt"

	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// Region is one of the three clusters of a bar.
type Region int

const (
	Left Region = iota
	Center
	Right
)

func (r Region) String() string {
	switch r {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	}
	return fmt.Sprintf("region(%d)", int(r))
}

// Regions holds the entries of each cluster.
type Regions struct {
	Left   []Entry
	Center []Entry
	Right  []Entry
}

// Gaps keeps the left and right clusters away from the screen edges.
type Gaps struct {
	Left  int
	Right int
}

// Placed is a slot in absolute screen coordinates. Index counts segments
// (not spacers) within the region.
type Placed struct {
	Region Region
	Index  int
	Slot
}

// Compose lays out a whole bar on a screen that starts at screenX and is
// width pixels wide.
//
// The center cluster is sized to its content and centered on the screen. The
// left cluster fills the space between the left gap and the center cluster;
// the right cluster fills the space between the center cluster and the right
// gap and is aligned to the right gap.
func Compose(screenX, width int, r Regions, gaps Gaps) ([]Placed, error) {
	center, err := Compute(r.Center, nil)
	if err != nil {
		return nil, fmt.Errorf("center region: %w", err)
	}
	centerWidth := Width(center)
	if centerWidth > width {
		return nil, sberrors.New(sberrors.ErrLayout,
			fmt.Sprintf("out of space: center region needs %dpx, screen is %dpx", centerWidth, width),
			"Remove segments from the center region or use a wider screen")
	}
	centerX := (width - centerWidth) / 2

	leftAvail := centerX - gaps.Left
	left, err := computeBounded(r.Left, leftAvail, Left)
	if err != nil {
		return nil, err
	}

	rightAvail := width - (centerX + centerWidth) - gaps.Right
	right, err := computeBounded(r.Right, rightAvail, Right)
	if err != nil {
		return nil, err
	}

	var placed []Placed
	placed = appendPlaced(placed, Left, left, screenX+gaps.Left)
	placed = appendPlaced(placed, Center, center, screenX+centerX)
	placed = appendPlaced(placed, Right, right, screenX+width-gaps.Right-Width(right))
	return placed, nil
}

func computeBounded(entries []Entry, avail int, region Region) ([]Slot, error) {
	if avail < 0 {
		if len(entries) == 0 {
			return nil, nil
		}
		return nil, sberrors.New(sberrors.ErrLayout,
			fmt.Sprintf("out of space: %s region has %dpx", region, avail),
			"Reduce the edge gap or the center region")
	}
	slots, err := Compute(entries, &avail)
	if err != nil {
		return nil, fmt.Errorf("%s region: %w", region, err)
	}
	return slots, nil
}

func appendPlaced(dst []Placed, region Region, slots []Slot, origin int) []Placed {
	for i, s := range slots {
		s.X += origin
		dst = append(dst, Placed{Region: region, Index: i, Slot: s})
	}
	return dst
}
