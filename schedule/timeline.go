package schedule

import (
	"github.com/swdee/go-synopsis/tube"
)

// Timeline is the occupancy model of the synopsis.  Each slot holds the union
// of all object masks placed at that synopsis time.  A Timeline only grows
type Timeline struct {
	width  int
	height int
	slots  []*tube.Mask
}

// NewTimeline returns an empty timeline for frames of the given size
func NewTimeline(width, height int) *Timeline {
	return &Timeline{
		width:  width,
		height: height,
	}
}

// Len returns the number of time slots
func (tl *Timeline) Len() int {
	return len(tl.slots)
}

// Slot returns the occupancy grid at time slot i
func (tl *Timeline) Slot(i int) *tube.Mask {
	return tl.slots[i]
}

// Fits reports if masks can be placed starting at slot start without
// colliding with anything already placed.  Slots past the end of the
// timeline count as empty
func (tl *Timeline) Fits(masks []*tube.Mask, start int) bool {

	for j, m := range masks {
		s := start + j

		if s >= len(tl.slots) {
			break
		}

		if m.Intersects(tl.slots[s]) {
			return false
		}
	}

	return true
}

// grow extends the timeline with empty grids until it has n slots
func (tl *Timeline) grow(n int) {
	for len(tl.slots) < n {
		tl.slots = append(tl.slots, tube.NewMask(tl.width, tl.height))
	}
}

// Place marks masks as occupied starting at slot start, growing the timeline
// as needed
func (tl *Timeline) Place(masks []*tube.Mask, start int) {

	tl.grow(start + len(masks))

	for j, m := range masks {
		tl.slots[start+j].Or(m)
	}
}
