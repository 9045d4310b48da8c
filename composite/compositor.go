package composite

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-synopsis/tube"
)

var (
	// ErrSizeMismatch is returned when background, source frames and masks
	// do not share the same dimensions
	ErrSizeMismatch = errors.New("frame size mismatch")
	// ErrFrameRange is returned for a source frame index that does not exist
	ErrFrameRange = errors.New("source frame index out of range")
	// ErrOverrun is returned when a tube does not fit in the synopsis length
	// it was scheduled into, the schedule and the compositor disagree
	ErrOverrun = errors.New("tube overruns synopsis length")
)

// Params defines the rendering parameters of the compositor
type Params struct {
	// BorderWidth is the width in pixels of the soft mask fade
	BorderWidth float64
	// Annotate enables drawing of bounding boxes and source frame indices
	Annotate bool
}

// DefaultParams returns a 20 pixel border with annotations enabled
func DefaultParams() Params {
	return Params{
		BorderWidth: DefaultBorderWidth,
		Annotate:    true,
	}
}

// Annotator draws the overlay marking where an object came from in the
// source video
type Annotator interface {
	// Annotate draws box and label text on frame f
	Annotate(f *Frame, box tube.BBox, text string)
}

// Synopsis is the rendered output of one group
type Synopsis struct {
	// Frames are the synopsis frames in playback order
	Frames []*Frame
	// Skipped counts the tube records that mapped outside the synopsis and
	// were not rendered, a non zero value points to an upstream bug
	Skipped int
}

// Compositor renders scheduled tubes over a background
type Compositor struct {
	params    Params
	annotator Annotator
	distance  DistanceTransform
	log       *logrus.Entry
}

// NewCompositor returns a compositor.  A nil annotator draws with the pure Go
// BoxAnnotator and a nil log uses the standard logrus logger
func NewCompositor(p Params, a Annotator, log *logrus.Entry) *Compositor {

	if a == nil {
		a = NewBoxAnnotator(color.RGBA{R: 0, G: 255, B: 255, A: 255}, 2)
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Compositor{
		params:    p,
		annotator: a,
		distance:  ExactDistance{},
		log:       log,
	}
}

// SetDistanceTransform replaces the exact distance transform used for soft
// masks, eg: with the OpenCV one from the render package
func (c *Compositor) SetDistanceTransform(dt DistanceTransform) {
	if dt == nil {
		dt = ExactDistance{}
	}
	c.distance = dt
}

// Compose renders length synopsis frames.  Every frame starts as a copy of
// background, then each tube is blended in at its shift in the order given.
// ctx is checked between tubes
func (c *Compositor) Compose(ctx context.Context, src FrameSource, background *Frame,
	tubes []*tube.Tube, shifts []int, length int) (*Synopsis, error) {

	if src.Len() > 0 {
		first, err := src.Frame(0)

		if err != nil {
			return nil, err
		}

		if !first.SameSize(background) {
			return nil, fmt.Errorf("background %dx%d, source %dx%d: %w",
				background.Width, background.Height, first.Width, first.Height, ErrSizeMismatch)
		}
	}

	if len(shifts) != len(tubes) {
		return nil, fmt.Errorf("%d shifts for %d tubes: %w", len(shifts), len(tubes), ErrOverrun)
	}

	for i, t := range tubes {
		if shifts[i]+t.Len() > length {
			return nil, fmt.Errorf("track %d shift %d length %d synopsis length %d: %w",
				t.TrackID, shifts[i], t.Len(), length, ErrOverrun)
		}
	}

	syn := &Synopsis{
		Frames: make([]*Frame, length),
	}

	for i := range syn.Frames {
		syn.Frames[i] = background.Clone()
	}

	for i, t := range tubes {

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		skipped, err := c.composeTube(src, syn.Frames, t, shifts[i])

		if err != nil {
			return nil, fmt.Errorf("track %d: %w", t.TrackID, err)
		}

		syn.Skipped += skipped
	}

	return syn, nil
}

// composeTube blends every record of t into the synopsis frames
func (c *Compositor) composeTube(src FrameSource, frames []*Frame, t *tube.Tube,
	shift int) (skipped int, err error) {

	for idx, rec := range t.Records {
		slot := shift + idx

		if slot < 0 || slot >= len(frames) {
			c.log.WithFields(logrus.Fields{
				"track_id": t.TrackID,
				"frame":    rec.FrameIndex,
				"slot":     slot,
			}).Warn("Skipping tube record outside synopsis")
			skipped++
			continue
		}

		fg, err := src.Frame(rec.FrameIndex)

		if err != nil {
			return skipped, fmt.Errorf("source frame %d: %w", rec.FrameIndex, err)
		}

		dst := frames[slot]

		if !fg.SameSize(dst) || rec.Mask.Width != dst.Width || rec.Mask.Height != dst.Height {
			return skipped, fmt.Errorf("source frame %d: %w", rec.FrameIndex, ErrSizeMismatch)
		}

		sm, err := NewSoftMaskWith(rec.Mask, c.params.BorderWidth, c.distance)

		if err != nil {
			return skipped, fmt.Errorf("source frame %d: %w", rec.FrameIndex, err)
		}

		blend(dst, fg, rec.Mask, sm)

		if c.params.Annotate {
			c.annotator.Annotate(dst, rec.Box, strconv.Itoa(rec.FrameIndex))
		}
	}

	return skipped, nil
}

// blend writes fg*alpha + dst*(1-alpha) into dst, in normalized color space,
// but only at pixels inside the binary mask.  Alpha outside the mask is not
// used, so objects never bleed past their detected outline
func blend(dst, fg *Frame, m *tube.Mask, sm *SoftMask) {

	for i, v := range m.Data {
		if v == 0 {
			continue
		}

		a := sm.Alpha[i]
		pos := i * 3

		for ch := 0; ch < 3; ch++ {
			f := float32(fg.Pix[pos+ch]) / 255
			b := float32(dst.Pix[pos+ch]) / 255
			comp := f*a + b*(1-a)
			dst.Pix[pos+ch] = uint8(comp*255 + 0.5)
		}
	}
}

// Cutout renders only the object pixels of src on a black frame, used to
// inspect a single tube
func Cutout(src *Frame, m *tube.Mask) *Frame {
	out := NewFrame(src.Width, src.Height)

	for i, v := range m.Data {
		if v == 0 {
			continue
		}

		pos := i * 3
		copy(out.Pix[pos:pos+3], src.Pix[pos:pos+3])
	}

	return out
}
