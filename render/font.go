package render

import (
	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Thickness int
	LineType  gocv.LineType
	// BottomPad is the distance of the text baseline above the bounding box
	BottomPad int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Thickness: 2,
		LineType:  gocv.LineAA,
		BottomPad: 10,
	}
}
