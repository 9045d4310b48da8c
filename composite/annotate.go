package composite

import (
	"image"
	"image/color"

	"github.com/swdee/go-synopsis/tube"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BoxAnnotator draws a bounding box outline and a text label above it using
// a fixed bitmap font.  It has no cgo dependency
type BoxAnnotator struct {
	// Color of the box and text
	Color color.RGBA
	// Thickness of the box outline in pixels
	Thickness int
	// TextOffset is the distance of the text baseline above the box top
	TextOffset int
	face       font.Face
}

// NewBoxAnnotator returns an annotator drawing in color clr with the given
// line thickness
func NewBoxAnnotator(clr color.RGBA, thickness int) *BoxAnnotator {
	return &BoxAnnotator{
		Color:      clr,
		Thickness:  max(1, thickness),
		TextOffset: 10,
		face:       basicfont.Face7x13,
	}
}

// Annotate implements Annotator
func (a *BoxAnnotator) Annotate(f *Frame, box tube.BBox, text string) {

	DrawRect(f, box.Rect(), a.Color, a.Thickness)

	if text == "" {
		return
	}

	// text baseline sits above the box, clamped to the frame top
	y := max(box.Top-a.TextOffset, 0)

	dr := &font.Drawer{
		Dst:  f,
		Src:  image.NewUniform(a.Color),
		Face: a.face,
		Dot:  fixed.P(box.Left, y),
	}

	dr.DrawString(text)
}

// DrawRect draws the outline of rectangle r with the given thickness the way
// gocv.Rectangle does: r.Max is the inclusive bottom right corner and the
// stroke is centred on the edges.  The outline is clipped to the frame
func DrawRect(f *Frame, r image.Rectangle, clr color.RGBA, thickness int) {

	r = r.Canon()
	thickness = max(1, thickness)

	// inclusive stroke offsets around an edge
	lo := -(thickness / 2)
	hi := lo + thickness - 1

	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				f.Set(x, y, clr)
			}
		}
	}

	// top, bottom, left, right
	fill(r.Min.X+lo, r.Min.Y+lo, r.Max.X+hi, r.Min.Y+hi)
	fill(r.Min.X+lo, r.Max.Y+lo, r.Max.X+hi, r.Max.Y+hi)
	fill(r.Min.X+lo, r.Min.Y+lo, r.Min.X+hi, r.Max.Y+hi)
	fill(r.Max.X+lo, r.Min.Y+lo, r.Max.X+hi, r.Max.Y+hi)
}
