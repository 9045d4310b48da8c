package composite

import (
	"image"
	"image/color"
)

// Frame is an 8 bit, 3 channel image stored as interleaved BGR bytes, which
// is the same layout as the data of a gocv CV8UC3 Mat so frames move between
// the two without conversion
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame returns a black frame of the given dimensions
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// NewFrameFromBytes creates a frame from BGR bytes.  The slice is copied
func NewFrameFromBytes(width, height int, bgr []uint8) (*Frame, error) {

	if len(bgr) != width*height*3 {
		return nil, ErrSizeMismatch
	}

	f := NewFrame(width, height)
	copy(f.Pix, bgr)

	return f, nil
}

// Clone returns an independent copy of the frame
func (f *Frame) Clone() *Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)

	return &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pix:    pix,
	}
}

// SameSize reports if both frames have identical dimensions
func (f *Frame) SameSize(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height
}

// Fill paints every pixel with color c
func (f *Frame) Fill(c color.RGBA) {
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i+0] = c.B
		f.Pix[i+1] = c.G
		f.Pix[i+2] = c.R
	}
}

// ColorModel implements image.Image
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image
func (f *Frame) At(x, y int) color.Color {
	return f.RGBAAt(x, y)
}

// RGBAAt returns the pixel color at x,y
func (f *Frame) RGBAAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}

	pos := (y*f.Width + x) * 3

	return color.RGBA{R: f.Pix[pos+2], G: f.Pix[pos+1], B: f.Pix[pos+0], A: 255}
}

// Set implements draw.Image.  Alpha is blended over the existing pixel and
// points outside the frame are ignored
func (f *Frame) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}

	r, g, b, a := c.RGBA()

	if a == 0 {
		return
	}

	pos := (y*f.Width + x) * 3

	if a == 0xffff {
		f.Pix[pos+0] = uint8(b >> 8)
		f.Pix[pos+1] = uint8(g >> 8)
		f.Pix[pos+2] = uint8(r >> 8)
		return
	}

	// colors are alpha premultiplied
	inv := 0xffff - a
	f.Pix[pos+0] = uint8((uint32(f.Pix[pos+0])*inv/0xffff*0x101 + b) >> 8)
	f.Pix[pos+1] = uint8((uint32(f.Pix[pos+1])*inv/0xffff*0x101 + g) >> 8)
	f.Pix[pos+2] = uint8((uint32(f.Pix[pos+2])*inv/0xffff*0x101 + r) >> 8)
}

// FrameSource gives access to decoded source video frames by frame index
type FrameSource interface {
	// Frame returns the source frame at index i
	Frame(i int) (*Frame, error)
	// Len returns the number of frames available
	Len() int
}

// Frames is an in memory FrameSource
type Frames []*Frame

// Frame implements FrameSource
func (fs Frames) Frame(i int) (*Frame, error) {
	if i < 0 || i >= len(fs) {
		return nil, ErrFrameRange
	}
	return fs[i], nil
}

// Len implements FrameSource
func (fs Frames) Len() int {
	return len(fs)
}
