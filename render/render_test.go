package render

import (
	"image/color"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/tube"
)

var cyan = color.RGBA{R: 0, G: 255, B: 255, A: 255}

func TestMatAnnotatorLogsBadFrame(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := NewMatAnnotator(cyan, 1, logrus.NewEntry(logger))

	f := &composite.Frame{Width: 8, Height: 8, Pix: make([]uint8, 10)}
	a.Annotate(f, tube.NewBBox(1, 1, 4, 4), "3")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, make([]uint8, 10), f.Pix)
}

func TestMatAnnotatorDraws(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := NewMatAnnotator(cyan, 1, logrus.NewEntry(logger))

	f := composite.NewFrame(32, 32)
	a.Annotate(f, tube.NewBBox(4, 12, 20, 24), "")

	assert.Empty(t, hook.AllEntries())
	assert.Equal(t, cyan, f.RGBAAt(4, 12))
	assert.Equal(t, cyan, f.RGBAAt(20, 24))
	assert.Equal(t, uint8(0), f.RGBAAt(10, 18).G)
}

func TestFrameMatRoundTrip(t *testing.T) {
	f := composite.NewFrame(6, 4)
	f.Fill(color.RGBA{R: 1, G: 2, B: 3, A: 255})

	mat, err := FrameToMat(f)
	require.NoError(t, err)
	defer mat.Close()

	got, err := MatToFrame(mat)
	require.NoError(t, err)
	assert.Equal(t, f.Pix, got.Pix)
}

func TestMatDistance(t *testing.T) {
	m := tube.NewMask(16, 12)
	m.Set(5, 5, true)

	dist, err := NewMatDistance().Distance(m)
	require.NoError(t, err)
	require.Len(t, dist, len(m.Data))

	at := func(x, y int) float64 { return dist[y*m.Width+x] }

	assert.Equal(t, 0.0, at(5, 5))
	assert.InDelta(t, 1.0, at(6, 5), 1e-6)
	assert.InDelta(t, 2.0, at(5, 7), 1e-6)
	assert.InDelta(t, 1.4, at(6, 6), 0.05)

	// close to the exact transform across the mask
	exact, err := composite.ExactDistance{}.Distance(m)
	require.NoError(t, err)

	for i := range dist {
		assert.InDelta(t, exact[i], dist[i], 0.1*exact[i]+1e-6, "pixel %d", i)
	}
}
