package tube

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByClass(t *testing.T) {
	tubes := []*Tube{
		movingTube(t, 1, 2, 3, 1),
		movingTube(t, 2, 0, 3, 1),
		movingTube(t, 3, 2, 3, 1),
		movingTube(t, 4, 0, 3, 1),
	}

	groups := GroupByClass(tubes)
	require.Len(t, groups, 3)

	assert.Equal(t, ClassKey(0), groups[0].Key)
	assert.Equal(t, ClassKey(2), groups[1].Key)
	assert.Equal(t, AllClasses, groups[2].Key)

	ids := func(g Group) []int64 {
		var out []int64
		for _, tb := range g.Tubes {
			out = append(out, tb.TrackID)
		}
		return out
	}

	assert.Equal(t, []int64{2, 4}, ids(groups[0]))
	assert.Equal(t, []int64{1, 3}, ids(groups[1]))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(groups[2]))
}

func TestGroupByClassEmpty(t *testing.T) {
	groups := GroupByClass(nil)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Key.All)
	assert.Empty(t, groups[0].Tubes)
}

func TestAllClassesDistinctFromClassIDs(t *testing.T) {
	assert.NotEqual(t, AllClasses, ClassKey(-1))
	assert.NotEqual(t, AllClasses, ClassKey(0))
	assert.Equal(t, "all", AllClasses.String())
	assert.Equal(t, "class 3", ClassKey(3).String())
}

func TestMergeOverlapping(t *testing.T) {
	const person, bike, car = 0, 1, 2

	personBox := NewBBox(10, 2, 14, 10)
	bikeBox := NewBBox(10, 8, 15, 12)

	mk := func(trackID int64, classID int, frames []int, box BBox) *Tube {
		tb := &Tube{TrackID: trackID}
		for _, f := range frames {
			rec, err := NewRecord(f, classID, rectMask(box.Rect()), box)
			require.NoError(t, err)
			tb.Records = append(tb.Records, rec)
		}
		return tb
	}

	p := mk(1, person, []int{0, 1, 2}, personBox)
	b := mk(2, bike, []int{1, 2, 3}, bikeBox)
	c := mk(3, car, []int{0, 1}, NewBBox(30, 0, 35, 5))

	got := MergeOverlapping([]*Tube{c, b, p}, person, bike, 0.1)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].TrackID)
	assert.Equal(t, int64(2), got[1].TrackID)
	assert.Equal(t, int64(3), got[2].TrackID)

	merged := got[0]

	// frame 0 has no bike
	assert.Equal(t, personBox, merged.Records[0].Box)
	assert.Equal(t, personBox.Area(), merged.Records[0].Mask.Count())

	// frames 1 and 2 overlap
	for _, i := range []int{1, 2} {
		assert.Equal(t, NewBBox(10, 2, 15, 12), merged.Records[i].Box)
		assert.True(t, merged.Records[i].Mask.At(14, 11))
	}

	// input untouched
	assert.Equal(t, personBox, p.Records[1].Box)
	assert.False(t, p.Records[1].Mask.At(14, 11))
}

func TestMergeBelowThreshold(t *testing.T) {
	box := NewBBox(0, 0, 4, 4)
	far := NewBBox(30, 10, 34, 14)

	p := &Tube{TrackID: 1}
	rec, err := NewRecord(0, 0, rectMask(box.Rect()), box)
	require.NoError(t, err)
	p.Records = append(p.Records, rec)

	s := &Tube{TrackID: 2}
	rec, err = NewRecord(0, 1, rectMask(image.Rect(30, 10, 34, 14)), far)
	require.NoError(t, err)
	s.Records = append(s.Records, rec)

	got := MergeOverlapping([]*Tube{p, s}, 0, 1, 0.1)
	assert.Equal(t, 16, got[0].Records[0].Mask.Count())
	assert.Same(t, p.Records[0].Mask, got[0].Records[0].Mask)
}
