package tube

import (
	"image"
)

// BBox are the dimensions of an objects bounding box in source frame pixel
// coordinates, (x1,y1) top left and (x2,y2) bottom right
type BBox struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NewBBox creates a bounding box from x1,y1,x2,y2 coordinates
func NewBBox(x1, y1, x2, y2 int) BBox {
	return BBox{Left: x1, Top: y1, Right: x2, Bottom: y2}
}

// Valid reports if the box has a positive width and height
func (b BBox) Valid() bool {
	return b.Left < b.Right && b.Top < b.Bottom
}

// Width of the box
func (b BBox) Width() int {
	return b.Right - b.Left
}

// Height of the box
func (b BBox) Height() int {
	return b.Bottom - b.Top
}

// Area of the box
func (b BBox) Area() int {
	return b.Width() * b.Height()
}

// Center returns the center point of the box
func (b BBox) Center() (cx, cy float64) {
	return float64(b.Left+b.Right) / 2.0, float64(b.Top+b.Bottom) / 2.0
}

// Rect returns the box as an image.Rectangle
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Union returns the smallest box containing both boxes
func (b BBox) Union(o BBox) BBox {
	return BBox{
		Left:   min(b.Left, o.Left),
		Top:    min(b.Top, o.Top),
		Right:  max(b.Right, o.Right),
		Bottom: max(b.Bottom, o.Bottom),
	}
}

// IoU calculates the Intersection over Union of two boxes
func (b BBox) IoU(o BBox) float64 {

	interW := max(0, min(b.Right, o.Right)-max(b.Left, o.Left))
	interH := max(0, min(b.Bottom, o.Bottom)-max(b.Top, o.Top))
	inter := interW * interH

	union := b.Area() + o.Area() - inter

	if union <= 0 {
		return 0
	}

	return float64(inter) / float64(union)
}
