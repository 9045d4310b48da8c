package schedule

import (
	"errors"
	"fmt"
	"sort"

	"github.com/swdee/go-synopsis/tube"
)

var (
	// ErrMaskSize is returned when a tube mask does not match the frame size
	// being scheduled
	ErrMaskSize = errors.New("tube mask size does not match frame size")
	// ErrInconsistent is returned by Verify when a schedule breaks the
	// placement contract
	ErrInconsistent = errors.New("inconsistent schedule")
)

// Result is the schedule of a group of tubes
type Result struct {
	// Shifts holds the synopsis start slot of each tube, in input order
	Shifts []int
	// Length is the number of synopsis frames needed
	Length int
}

// Schedule assigns each tube a start slot in a shared timeline so that no
// two tubes cover the same pixel in the same slot.  Tubes are placed greedily
// in the given order, each at the lowest start slot where it fits, or
// appended after everything placed so far when no such slot exists.
//
// Callers place longer tubes first, see SortByLength
func Schedule(tubes []*tube.Tube, width, height int) (*Result, error) {

	tl := NewTimeline(width, height)
	shifts := make([]int, len(tubes))

	for i, t := range tubes {

		masks := t.Masks()

		for j, m := range masks {
			if m.Width != width || m.Height != height {
				return nil, fmt.Errorf("track %d record %d: %w", t.TrackID, j, ErrMaskSize)
			}
		}

		shifts[i] = firstFit(tl, masks)
		tl.Place(masks, shifts[i])
	}

	return &Result{
		Shifts: shifts,
		Length: tl.Len(),
	}, nil
}

// firstFit finds the lowest start slot the masks fit at
func firstFit(tl *Timeline, masks []*tube.Mask) int {

	last := max(0, tl.Len()-len(masks))

	for s := 0; s <= last; s++ {
		if tl.Fits(masks, s) {
			return s
		}
	}

	// append to the end, these slots are always empty
	return tl.Len()
}

// SortByLength returns the tube indices ordered by descending tube length.
// Tubes of equal length keep their input order
func SortByLength(tubes []*tube.Tube) []int {
	order := make([]int, len(tubes))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return tubes[order[a]].Len() > tubes[order[b]].Len()
	})

	return order
}

// Verify checks that res is a valid schedule of tubes: one non negative
// shift per tube, every tube inside the synopsis length and no two tubes
// covering the same pixel in the same slot
func Verify(tubes []*tube.Tube, res *Result) error {

	if len(res.Shifts) != len(tubes) {
		return fmt.Errorf("%d shifts for %d tubes: %w", len(res.Shifts), len(tubes), ErrInconsistent)
	}

	// rebuild the occupancy slot by slot
	var occ []*tube.Mask

	for i, t := range tubes {
		shift := res.Shifts[i]

		if shift < 0 {
			return fmt.Errorf("track %d negative shift %d: %w", t.TrackID, shift, ErrInconsistent)
		}

		if shift+t.Len() > res.Length {
			return fmt.Errorf("track %d ends at %d past synopsis length %d: %w",
				t.TrackID, shift+t.Len(), res.Length, ErrInconsistent)
		}

		for j, rec := range t.Records {
			s := shift + j

			for len(occ) <= s {
				occ = append(occ, nil)
			}

			if occ[s] == nil {
				occ[s] = rec.Mask.Clone()
				continue
			}

			if !occ[s].SameSize(rec.Mask) {
				return fmt.Errorf("track %d slot %d: %w", t.TrackID, s, ErrMaskSize)
			}

			if occ[s].Intersects(rec.Mask) {
				return fmt.Errorf("track %d collides in slot %d: %w", t.TrackID, s, ErrInconsistent)
			}

			occ[s].Or(rec.Mask)
		}
	}

	return nil
}
