package tube

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder(testW, testH, nil)

	box := NewBBox(0, 0, 4, 4)

	// track 7 seen first with 5 observations, track 3 only twice
	for f := 0; f < 5; f++ {
		require.NoError(t, b.Add(7, 1, f, rectMask(box.Rect()), box))

		if f < 2 {
			require.NoError(t, b.Add(3, 0, f, rectMask(box.Rect()), box))
		}
	}

	err := b.Add(7, 1, 5, NewMask(testW, testH), box)
	assert.ErrorIs(t, err, ErrEmptyMask)
	assert.True(t, IsDropped(err))

	assert.ErrorIs(t, b.Add(7, 1, 2, rectMask(box.Rect()), box), ErrFrameOrder)
	assert.ErrorIs(t, b.Add(7, 1, 9, NewMask(3, 3), box), ErrMaskSize)

	tubes := b.Tubes(DefaultMinLength)
	require.Len(t, tubes, 1)
	assert.Equal(t, int64(7), tubes[0].TrackID)
	assert.Equal(t, 5, tubes[0].Len())
	require.NoError(t, tubes[0].Validate(testW, testH))

	assert.Len(t, b.Tubes(2), 2)

	b.Reset()
	assert.Empty(t, b.Tubes(0))
}

func TestBuilderRejectsClassChange(t *testing.T) {
	b := NewBuilder(testW, testH, nil)
	box := NewBBox(0, 0, 4, 4)

	for f := 0; f < 5; f++ {
		err := b.Add(1, f%2, f, rectMask(box.Rect()), box)

		if f%2 == 1 {
			assert.ErrorIs(t, err, ErrClassChange, "frame %d", f)
			assert.False(t, IsDropped(err))
		} else {
			assert.NoError(t, err, "frame %d", f)
		}
	}

	tubes := b.Tubes(1)
	require.Len(t, tubes, 1)
	assert.Equal(t, 3, tubes[0].Len())
	assert.NoError(t, tubes[0].Validate(testW, testH))
}

func TestBuilderTubesAreSnapshots(t *testing.T) {
	b := NewBuilder(testW, testH, nil)
	box := NewBBox(0, 0, 4, 4)

	for f := 0; f < 5; f++ {
		require.NoError(t, b.Add(1, 0, f, rectMask(box.Rect()), box))
	}

	tubes := b.Tubes(DefaultMinLength)
	require.Len(t, tubes, 1)
	require.Equal(t, 5, tubes[0].Len())

	require.NoError(t, b.Add(1, 0, 5, rectMask(box.Rect()), box))
	assert.Equal(t, 5, tubes[0].Len(), "returned tube must not grow")
	assert.Equal(t, 6, b.Tubes(DefaultMinLength)[0].Len())
}

func TestRLE(t *testing.T) {
	m := rectMask(image.Rect(3, 1, 7, 4))

	counts := EncodeRLE(m)
	got, err := DecodeRLE(testW, testH, counts)
	require.NoError(t, err)
	assert.Equal(t, m.Data, got.Data)

	// mask starting with a set pixel has a leading zero run
	first := NewMask(testW, testH)
	first.Set(0, 0, true)
	assert.Equal(t, []int{0, 1, testW*testH - 1}, EncodeRLE(first))

	_, err = DecodeRLE(testW, testH, []int{5})
	assert.ErrorIs(t, err, ErrBadRLE)

	_, err = DecodeRLE(testW, testH, []int{testW * testH, 1})
	assert.ErrorIs(t, err, ErrBadRLE)
}

func TestCodec(t *testing.T) {
	tubes := []*Tube{
		movingTube(t, 11, 2, 4, 3),
		movingTube(t, 12, 0, 3, 5),
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tubes, testW, testH))

	got, w, h, err := Decode(&buf, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, testW, w)
	assert.Equal(t, testH, h)
	require.Len(t, got, 2)

	for i := range tubes {
		assert.Equal(t, tubes[i].TrackID, got[i].TrackID)
		assert.Equal(t, tubes[i].ClassID(), got[i].ClassID())
		require.Equal(t, tubes[i].Len(), got[i].Len())

		for j := range tubes[i].Records {
			want := tubes[i].Records[j]
			rec := got[i].Records[j]
			assert.Equal(t, want.FrameIndex, rec.FrameIndex)
			assert.Equal(t, want.Box, rec.Box)
			assert.Equal(t, want.Centroid, rec.Centroid)
			assert.Equal(t, want.Mask.Data, rec.Mask.Data)
		}
	}
}

func TestDecodeSkipsEmptyMasks(t *testing.T) {
	doc := `{"width":4,"height":2,"tubes":[{"track_id":1,"class_id":0,"records":[
		{"frame":0,"bbox":[0,0,2,2],"mask":[8]},
		{"frame":1,"bbox":[0,0,2,2],"mask":[0,2,6]}
	]}]}`

	got, _, _, err := Decode(bytes.NewBufferString(doc), 1, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].Len())
	assert.Equal(t, 1, got[0].Records[0].FrameIndex)
}

func TestDecodeMinLength(t *testing.T) {
	tubes := []*Tube{
		movingTube(t, 11, 2, 5, 3),
		movingTube(t, 12, 0, 3, 5),
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tubes, testW, testH))

	got, _, _, err := Decode(&buf, DefaultMinLength, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].TrackID)
}

func TestDecodeDropsTubesWithoutValidRecords(t *testing.T) {
	doc := `{"width":4,"height":2,"tubes":[
		{"track_id":1,"class_id":0,"records":[{"frame":0,"bbox":[0,0,2,2],"mask":[8]}]},
		{"track_id":2,"class_id":0,"records":[{"frame":0,"bbox":[0,0,2,2],"mask":[0,2,6]}]}
	]}`

	got, _, _, err := Decode(bytes.NewBufferString(doc), 1, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].TrackID)
}

func TestDecodeRejectsClassChange(t *testing.T) {
	// the same track listed twice with different classes
	doc := `{"width":4,"height":2,"tubes":[
		{"track_id":1,"class_id":0,"records":[{"frame":0,"bbox":[0,0,2,2],"mask":[0,2,6]}]},
		{"track_id":1,"class_id":3,"records":[{"frame":1,"bbox":[0,0,2,2],"mask":[0,2,6]}]}
	]}`

	_, _, _, err := Decode(bytes.NewBufferString(doc), 1, nil)
	assert.ErrorIs(t, err, ErrClassChange)
}

func TestDecodeErrors(t *testing.T) {
	_, _, _, err := Decode(bytes.NewBufferString(`{"width":0,"height":2}`), 1, nil)
	assert.Error(t, err)

	_, _, _, err = Decode(bytes.NewBufferString(`{"width":2,"height":2,"tubes":[{"records":[{"frame":0,"bbox":[0,0,1,1],"mask":[1]}]}]}`), 1, nil)
	assert.ErrorIs(t, err, ErrBadRLE)

	_, _, _, err = Decode(bytes.NewBufferString(`not json`), 1, nil)
	assert.Error(t, err)
}
