package tube

import (
	"errors"
	"fmt"
	"image"
	"slices"
)

var (
	// ErrEmptyTube is returned for a tube without any frame records
	ErrEmptyTube = errors.New("tube has no frame records")
	// ErrEmptyMask is returned for a frame record whose mask has no set pixels
	ErrEmptyMask = errors.New("mask is empty")
	// ErrMaskSize is returned when a mask does not match the frame dimensions
	ErrMaskSize = errors.New("mask size does not match frame size")
	// ErrFrameOrder is returned when source frame indices are not strictly
	// increasing along a tube
	ErrFrameOrder = errors.New("frame indices not strictly increasing")
	// ErrClassChange is returned when a tube changes class mid way
	ErrClassChange = errors.New("class id changes within tube")
	// ErrInvalidBox is returned for a bounding box without positive area
	ErrInvalidBox = errors.New("invalid bounding box")
)

// FrameRecord is a single observation of a tracked object in one source frame
type FrameRecord struct {
	// FrameIndex is the index of the source video frame the object was
	// observed in
	FrameIndex int
	// Mask is the binary object mask in source frame coordinates
	Mask *Mask
	// Box is the bounding box of the object
	Box BBox
	// Centroid is the mean position of the mask pixels
	Centroid image.Point
	// ClassID is the detector class of the object
	ClassID int
}

// NewRecord creates a frame record and derives its centroid from the mask
func NewRecord(frameIndex, classID int, mask *Mask, box BBox) (FrameRecord, error) {

	if frameIndex < 0 {
		return FrameRecord{}, fmt.Errorf("negative frame index %d: %w", frameIndex, ErrFrameOrder)
	}

	if !box.Valid() {
		return FrameRecord{}, fmt.Errorf("frame %d box %v: %w", frameIndex, box, ErrInvalidBox)
	}

	centroid, ok := mask.Centroid()

	if !ok {
		return FrameRecord{}, fmt.Errorf("frame %d: %w", frameIndex, ErrEmptyMask)
	}

	return FrameRecord{
		FrameIndex: frameIndex,
		Mask:       mask,
		Box:        box,
		Centroid:   centroid,
		ClassID:    classID,
	}, nil
}

// Tube is the trajectory of one tracked object, an ordered sequence of frame
// records.  A Tube owns its records and is not modified once it has been
// refined, the scheduler keeps the shift assigned to a tube outside of it
type Tube struct {
	// TrackID is the tracker identity of the object
	TrackID int64
	// Records are the observations in source frame order
	Records []FrameRecord
}

// Len returns the number of frame records in the tube
func (t *Tube) Len() int {
	return len(t.Records)
}

// ClassID returns the class of the object, or -1 for an empty tube
func (t *Tube) ClassID() int {
	if len(t.Records) == 0 {
		return -1
	}
	return t.Records[0].ClassID
}

// Masks returns the masks of every record in order
func (t *Tube) Masks() []*Mask {
	masks := make([]*Mask, len(t.Records))

	for i := range t.Records {
		masks[i] = t.Records[i].Mask
	}

	return masks
}

// FirstFrame returns the source frame index of the first record
func (t *Tube) FirstFrame() int {
	if len(t.Records) == 0 {
		return -1
	}
	return t.Records[0].FrameIndex
}

// Validate checks the tube invariants against a frame of the given size
func (t *Tube) Validate(width, height int) error {

	if len(t.Records) == 0 {
		return ErrEmptyTube
	}

	classID := t.Records[0].ClassID
	last := -1

	for i, rec := range t.Records {

		if rec.FrameIndex <= last {
			return fmt.Errorf("record %d frame %d after frame %d: %w",
				i, rec.FrameIndex, last, ErrFrameOrder)
		}

		last = rec.FrameIndex

		if rec.Mask == nil || rec.Mask.Width != width || rec.Mask.Height != height {
			return fmt.Errorf("record %d: %w", i, ErrMaskSize)
		}

		if rec.Mask.Empty() {
			return fmt.Errorf("record %d: %w", i, ErrEmptyMask)
		}

		if !rec.Box.Valid() {
			return fmt.Errorf("record %d box %v: %w", i, rec.Box, ErrInvalidBox)
		}

		if rec.ClassID != classID {
			return fmt.Errorf("record %d class %d, tube class %d: %w",
				i, rec.ClassID, classID, ErrClassChange)
		}
	}

	return nil
}

// subset returns a new tube holding the records at the given indices
func (t *Tube) subset(keep []int) *Tube {
	recs := make([]FrameRecord, len(keep))

	for i, k := range keep {
		recs[i] = t.Records[k]
	}

	return &Tube{
		TrackID: t.TrackID,
		Records: recs,
	}
}

// FilterClass returns the tubes belonging to any of the given classes, in
// input order
func FilterClass(tubes []*Tube, classIDs ...int) []*Tube {
	var out []*Tube

	for _, t := range tubes {
		if slices.Contains(classIDs, t.ClassID()) {
			out = append(out, t)
		}
	}

	return out
}
