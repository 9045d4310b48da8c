package render

import (
	"fmt"

	"github.com/swdee/go-synopsis/tube"
	"gocv.io/x/gocv"
)

// MatDistance is a composite.DistanceTransform using OpenCV's
// distanceTransform with the L2 metric
type MatDistance struct {
	// MaskSize is the size of the distance transform mask
	MaskSize gocv.DistanceTransformMasks
}

// NewMatDistance returns a distance transform using a 5x5 mask
func NewMatDistance() *MatDistance {
	return &MatDistance{
		MaskSize: gocv.DistanceMask5,
	}
}

// Distance implements composite.DistanceTransform
func (d *MatDistance) Distance(m *tube.Mask) ([]float64, error) {

	// OpenCV measures the distance to the nearest zero pixel, so the object
	// is cleared and everything else set
	inv := make([]uint8, len(m.Data))

	for i, v := range m.Data {
		if v == 0 {
			inv[i] = 255
		}
	}

	src, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, inv)

	if err != nil {
		return nil, fmt.Errorf("error creating Mat from mask: %w", err)
	}

	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	labels := gocv.NewMat()
	defer labels.Close()

	gocv.DistanceTransform(src, &dst, &labels, gocv.DistL2, d.MaskSize, gocv.DistanceLabelCComp)

	data, err := dst.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading distances: %w", err)
	}

	dist := make([]float64, len(data))

	for i, v := range data {
		dist[i] = float64(v)
	}

	return dist, nil
}
