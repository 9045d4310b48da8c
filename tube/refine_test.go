package tube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxTube builds a tube from bounding box x offsets, all boxes 4x4 at y=2
func boxTube(t *testing.T, xs []int) *Tube {
	tb := &Tube{TrackID: 9}

	for i, x := range xs {
		box := NewBBox(x, 2, x+4, 6)
		rec, err := NewRecord(i*2, 0, rectMask(box.Rect()), box)
		require.NoError(t, err)
		tb.Records = append(tb.Records, rec)
	}

	return tb
}

func frameIndices(tb *Tube) []int {
	var out []int
	for _, r := range tb.Records {
		out = append(out, r.FrameIndex)
	}
	return out
}

func TestRefineExactDisplacementKeepsAll(t *testing.T) {
	tb := boxTube(t, []int{0, 5, 10, 15, 20})

	got, ok := Refine(tb, DefaultRefineParams())
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 4, 6, 8}, frameIndices(got))
}

func TestRefineDropsDwellFrames(t *testing.T) {
	// moves 1px for several frames, then jumps far enough from the first
	tb := boxTube(t, []int{0, 1, 2, 3, 4, 10})

	got, ok := Refine(tb, DefaultRefineParams())
	require.True(t, ok)
	assert.Equal(t, []int{0, 10}, frameIndices(got))
}

func TestRefineMeasuresFromLastKept(t *testing.T) {
	// 3px steps, each kept record is 6px from the previous kept one
	tb := boxTube(t, []int{0, 3, 6, 9, 12})

	got, ok := Refine(tb, DefaultRefineParams())
	require.True(t, ok)
	assert.Equal(t, []int{0, 4, 8}, frameIndices(got))
}

func TestRefineDiscardsStatic(t *testing.T) {
	tb := boxTube(t, []int{4, 4, 4, 4})

	_, ok := Refine(tb, DefaultRefineParams())
	assert.False(t, ok, "single kept record is not longer than MinFrames")

	got, ok := Refine(tb, RefineParams{MinDisplacement: 5, MinFrames: 0})
	require.True(t, ok)
	assert.Equal(t, 1, got.Len())
}

func TestRefineMonotonic(t *testing.T) {
	inputs := [][]int{
		{0, 1, 7, 8, 20, 21, 22, 30},
		{0, 5, 10},
		{3, 9, 9, 9, 16},
	}

	for _, xs := range inputs {
		tb := boxTube(t, xs)
		before := tb.Len()

		got, ok := Refine(tb, DefaultRefineParams())
		if !ok {
			continue
		}

		assert.LessOrEqual(t, got.Len(), tb.Len())
		assert.Equal(t, tb.Records[0].FrameIndex, got.Records[0].FrameIndex)
		assert.Equal(t, before, tb.Len(), "input tube must not change")
		assert.Equal(t, tb.TrackID, got.TrackID)
	}
}

func TestRefineAll(t *testing.T) {
	tubes := []*Tube{
		boxTube(t, []int{0, 0, 0}),
		boxTube(t, []int{0, 10, 20}),
	}

	got := RefineAll(tubes, DefaultRefineParams())
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Len())
}
