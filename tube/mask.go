package tube

import (
	"image"
)

// Mask is a binary object mask covering the whole source frame.  Pixels are
// stored row major, one byte per pixel, with 1 marking the object and 0 the
// background, the same layout used for segmentation masks coming out of the
// detector
type Mask struct {
	Width  int
	Height int
	Data   []uint8
}

// NewMask returns an empty mask of the given dimensions
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height),
	}
}

// At reports if the pixel at x,y is part of the object
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Data[y*m.Width+x] != 0
}

// Set marks or clears the pixel at x,y.  Coordinates outside the mask are
// ignored
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}

	if v {
		m.Data[y*m.Width+x] = 1
	} else {
		m.Data[y*m.Width+x] = 0
	}
}

// SetRect marks every pixel inside rectangle r, clipped to the mask
func (m *Mask) SetRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Data[y*m.Width : (y+1)*m.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = 1
		}
	}
}

// Count returns the number of set pixels
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Empty reports if no pixel is set
func (m *Mask) Empty() bool {
	for _, v := range m.Data {
		if v != 0 {
			return false
		}
	}
	return true
}

// SameSize reports if both masks have identical dimensions
func (m *Mask) SameSize(o *Mask) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Intersects reports if any pixel is set in both masks.  Masks must be the
// same size
func (m *Mask) Intersects(o *Mask) bool {
	for i, v := range m.Data {
		if v != 0 && o.Data[i] != 0 {
			return true
		}
	}
	return false
}

// Or sets every pixel that is set in o
func (m *Mask) Or(o *Mask) {
	for i, v := range o.Data {
		if v != 0 {
			m.Data[i] = 1
		}
	}
}

// Clone returns a deep copy of the mask
func (m *Mask) Clone() *Mask {
	data := make([]uint8, len(m.Data))
	copy(data, m.Data)

	return &Mask{
		Width:  m.Width,
		Height: m.Height,
		Data:   data,
	}
}

// Centroid returns the integer mean position of all set pixels.  ok is false
// for an empty mask
func (m *Mask) Centroid() (pt image.Point, ok bool) {

	var sumX, sumY, n int

	for y := 0; y < m.Height; y++ {
		row := m.Data[y*m.Width : (y+1)*m.Width]

		for x, v := range row {
			if v != 0 {
				sumX += x
				sumY += y
				n++
			}
		}
	}

	if n == 0 {
		return image.Point{}, false
	}

	return image.Pt(sumX/n, sumY/n), true
}
