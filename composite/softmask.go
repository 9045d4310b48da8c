package composite

import (
	"fmt"
	"math"

	"github.com/swdee/go-synopsis/tube"
)

// DefaultBorderWidth is the width in pixels the soft mask fades over
const DefaultBorderWidth = 20

// SoftMask holds a per pixel blending weight for one object mask
type SoftMask struct {
	Width  int
	Height int
	// Alpha is the row major blending weight in [0,1]
	Alpha []float32
}

// DistanceTransform computes, for every pixel of a mask, the Euclidean
// distance to the nearest set pixel.  Set pixels have distance 0
type DistanceTransform interface {
	// Distance returns the row major distances of mask m
	Distance(m *tube.Mask) ([]float64, error)
}

// ExactDistance is the exact Euclidean distance transform in pure Go
type ExactDistance struct{}

// Distance implements DistanceTransform.  An empty mask yields +Inf everywhere
func (ExactDistance) Distance(m *tube.Mask) ([]float64, error) {
	dist := distanceToMask(m)

	for i, d2 := range dist {
		dist[i] = math.Sqrt(d2)
	}

	return dist, nil
}

// NewSoftMask computes the soft alpha for mask m with the exact distance
// transform.  Each pixel is weighted by its Euclidean distance d to the
// nearest mask pixel, so pixels of the mask have d=0, and
// alpha = 1 - clamp(d, 0, border) / border fades linearly to 0 at border
// pixels outside the object
func NewSoftMask(m *tube.Mask, border float64) *SoftMask {
	dist, _ := ExactDistance{}.Distance(m)
	return softMask(m, dist, border)
}

// NewSoftMaskWith computes the soft alpha for mask m using the distances
// given by dt
func NewSoftMaskWith(m *tube.Mask, border float64, dt DistanceTransform) (*SoftMask, error) {

	dist, err := dt.Distance(m)

	if err != nil {
		return nil, fmt.Errorf("distance transform: %w", err)
	}

	if len(dist) != len(m.Data) {
		return nil, fmt.Errorf("%d distances for %dx%d mask: %w",
			len(dist), m.Width, m.Height, ErrSizeMismatch)
	}

	return softMask(m, dist, border), nil
}

// softMask converts distances into alpha
func softMask(m *tube.Mask, dist []float64, border float64) *SoftMask {

	sm := &SoftMask{
		Width:  m.Width,
		Height: m.Height,
		Alpha:  make([]float32, len(m.Data)),
	}

	for i, d := range dist {
		if border <= 0 {
			// no feathering, hard edge
			if d == 0 {
				sm.Alpha[i] = 1
			}
			continue
		}

		sm.Alpha[i] = float32(1 - math.Min(math.Max(d, 0), border)/border)
	}

	return sm
}

// At returns the alpha at x,y
func (sm *SoftMask) At(x, y int) float32 {
	return sm.Alpha[y*sm.Width+x]
}

// distanceToMask returns the exact squared Euclidean distance from every
// pixel to the nearest set pixel of m, computed separably over columns then
// rows with the lower envelope of parabolas method of Felzenszwalb and
// Huttenlocher.  An empty mask yields +Inf everywhere
func distanceToMask(m *tube.Mask) []float64 {

	w, h := m.Width, m.Height
	inf := math.Inf(1)
	grid := make([]float64, w*h)

	for i, v := range m.Data {
		if v == 0 {
			grid[i] = inf
		}
	}

	n := max(w, h)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	// columns
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			f[y] = grid[y*w+x]
		}

		edt1d(f[:h], d[:h], v, z)

		for y := 0; y < h; y++ {
			grid[y*w+x] = d[y]
		}
	}

	// rows
	for y := 0; y < h; y++ {
		row := grid[y*w : (y+1)*w]
		copy(f, row)

		edt1d(f[:w], d[:w], v, z)

		copy(row, d[:w])
	}

	return grid
}

// edt1d computes the one dimensional squared distance transform of f into d.
// v and z are scratch buffers of at least len(f) and len(f)+1
func edt1d(f, d []float64, v []int, z []float64) {

	n := len(f)
	inf := math.Inf(1)

	// find the first finite sample, an all infinite line stays infinite
	k := -1

	for q := 0; q < n; q++ {
		if !math.IsInf(f[q], 1) {
			if k < 0 {
				k = 0
				v[0] = q
				z[0] = -inf
				z[1] = inf
				continue
			}

			s := intersect(f, q, v[k])

			for s <= z[k] {
				k--
				if k < 0 {
					break
				}
				s = intersect(f, q, v[k])
			}

			k++
			v[k] = q
			if k == 0 {
				z[0] = -inf
			} else {
				z[k] = s
			}
			z[k+1] = inf
		}
	}

	if k < 0 {
		for q := range d {
			d[q] = inf
		}
		return
	}

	k = 0

	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}

		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

// intersect returns the position where the parabolas rooted at q and p meet
func intersect(f []float64, q, p int) float64 {
	fq := f[q] + float64(q*q)
	fp := f[p] + float64(p*p)
	return (fq - fp) / float64(2*q-2*p)
}
