package tube

import (
	"gonum.org/v1/gonum/floats"
)

// RefineParams defines the parameters used for displacement based temporal
// subsampling of a tube
type RefineParams struct {
	// MinDisplacement is the minimum Euclidean distance in pixels the bounding
	// box center has to move from the last kept record before another record
	// is kept
	MinDisplacement float64
	// MinFrames is the refined length a tube must exceed to be kept
	MinFrames int
}

// DefaultRefineParams returns a displacement of 5 pixels and a minimum
// refined length of more than 1 record
func DefaultRefineParams() RefineParams {
	return RefineParams{
		MinDisplacement: 5,
		MinFrames:       1,
	}
}

// Refine subsamples the tube so that consecutive kept records have their
// bounding box center moved by at least MinDisplacement.  The first record is
// always kept.  ok is false when the refined tube is not longer than
// MinFrames and should be discarded.  The input tube is not modified
func Refine(t *Tube, p RefineParams) (refined *Tube, ok bool) {

	keep := make([]int, 0, t.Len())
	last := make([]float64, 2)
	cur := make([]float64, 2)

	for i, rec := range t.Records {
		cur[0], cur[1] = rec.Box.Center()

		// always keep the very first detection
		if len(keep) == 0 || floats.Distance(cur, last, 2) >= p.MinDisplacement {
			keep = append(keep, i)
			copy(last, cur)
		}
	}

	if len(keep) <= p.MinFrames {
		return nil, false
	}

	return t.subset(keep), true
}

// RefineAll refines every tube and drops the ones that became too short
func RefineAll(tubes []*Tube, p RefineParams) []*Tube {
	out := make([]*Tube, 0, len(tubes))

	for _, t := range tubes {
		if r, ok := Refine(t, p); ok {
			out = append(out, r)
		}
	}

	return out
}
