package render

import (
	"fmt"

	"github.com/swdee/go-synopsis/composite"
	"gocv.io/x/gocv"
)

// FrameToMat creates a CV8UC3 Mat holding a copy of the frame pixels.  The
// caller must Close the returned Mat
func FrameToMat(f *composite.Frame) (gocv.Mat, error) {

	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("error creating Mat from frame: %w", err)
	}

	// NewMatFromBytes references the Go slice, clone so the Mat owns its data
	defer mat.Close()

	return mat.Clone(), nil
}

// MatToFrame copies a BGR Mat into a new frame
func MatToFrame(mat gocv.Mat) (*composite.Frame, error) {

	if mat.Empty() {
		return nil, fmt.Errorf("empty Mat")
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("unsupported Mat type %v, want CV8UC3", mat.Type())
	}

	return composite.NewFrameFromBytes(mat.Cols(), mat.Rows(), mat.ToBytes())
}
