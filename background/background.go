// Package background estimates the static scene a synopsis is composited
// over from a set of decoded frames
package background

import (
	"errors"
	"sort"

	"github.com/swdee/go-synopsis/composite"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoFrames is returned when there are no frames to estimate from
	ErrNoFrames = errors.New("no frames to estimate background from")
	// ErrSizeMismatch is returned when frames differ in size
	ErrSizeMismatch = errors.New("frames differ in size")
	// ErrRate is returned for a learning rate outside (0,1]
	ErrRate = errors.New("learning rate must be in (0,1]")
)

// Sample returns every step'th frame, starting with the first
func Sample(frames []*composite.Frame, step int) []*composite.Frame {

	if step <= 1 {
		return frames
	}

	out := make([]*composite.Frame, 0, len(frames)/step+1)

	for i := 0; i < len(frames); i += step {
		out = append(out, frames[i])
	}

	return out
}

// Median returns the per pixel, per channel median of every step'th frame.
// With an even number of samples the two middle values are averaged and the
// result truncated
func Median(frames []*composite.Frame, step int) (*composite.Frame, error) {

	samples := Sample(frames, step)

	if err := checkFrames(samples); err != nil {
		return nil, err
	}

	out := composite.NewFrame(samples[0].Width, samples[0].Height)
	vals := make([]float64, len(samples))
	mid := len(vals) / 2

	for i := range out.Pix {
		for j, f := range samples {
			vals[j] = float64(f.Pix[i])
		}

		sort.Float64s(vals)

		med := vals[mid]

		if len(vals)%2 == 0 {
			med = stat.Mean(vals[mid-1:mid+1], nil)
		}

		out.Pix[i] = uint8(med)
	}

	return out, nil
}

// RunningAverage returns an exponential moving average of the frames, each
// new frame contributing with weight rate
func RunningAverage(frames []*composite.Frame, rate float64) (*composite.Frame, error) {

	if err := checkFrames(frames); err != nil {
		return nil, err
	}

	if rate <= 0 || rate > 1 {
		return nil, ErrRate
	}

	acc := make([]float64, len(frames[0].Pix))
	cur := make([]float64, len(acc))

	for i, v := range frames[0].Pix {
		acc[i] = float64(v)
	}

	for _, f := range frames[1:] {
		for i, v := range f.Pix {
			cur[i] = float64(v)
		}

		// acc = (1-rate)*acc + rate*cur
		floats.Scale(1-rate, acc)
		floats.AddScaled(acc, rate, cur)
	}

	out := composite.NewFrame(frames[0].Width, frames[0].Height)

	for i, v := range acc {
		out.Pix[i] = uint8(v + 0.5)
	}

	return out, nil
}

// checkFrames verifies there is at least one frame and all share one size
func checkFrames(frames []*composite.Frame) error {

	if len(frames) == 0 {
		return ErrNoFrames
	}

	for _, f := range frames[1:] {
		if !f.SameSize(frames[0]) {
			return ErrSizeMismatch
		}
	}

	return nil
}
