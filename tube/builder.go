package tube

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultMinLength is the minimum number of observations a track needs
// before it is materialised as a tube
const DefaultMinLength = 5

// Builder accumulates tracker results per track ID into tubes
type Builder struct {
	width  int
	height int
	// history of records per track
	history map[int64]*Tube
	// order of first appearance of each track ID
	order []int64
	log   *logrus.Entry
	sync.Mutex
}

// NewBuilder returns a new tube builder for frames of the given dimensions.
// A nil log uses the standard logrus logger
func NewBuilder(width, height int, log *logrus.Entry) *Builder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Builder{
		width:   width,
		height:  height,
		history: make(map[int64]*Tube),
		log:     log,
	}
}

// Reset clears all history
func (b *Builder) Reset() {
	b.Lock()
	defer b.Unlock()

	b.history = make(map[int64]*Tube)
	b.order = nil
}

// Add records a tracked object observation.  Observations with an empty mask
// or a box without area are dropped and reported with ErrEmptyMask or
// ErrInvalidBox.  A track keeps the class of its first observation, a
// different class is rejected with ErrClassChange
func (b *Builder) Add(trackID int64, classID, frameIndex int, mask *Mask, box BBox) error {

	if mask.Width != b.width || mask.Height != b.height {
		return ErrMaskSize
	}

	rec, err := NewRecord(frameIndex, classID, mask, box)

	if err != nil {
		return err
	}

	b.Lock()
	defer b.Unlock()

	t, exists := b.history[trackID]

	if !exists {
		t = &Tube{TrackID: trackID}
		b.history[trackID] = t
		b.order = append(b.order, trackID)
	}

	// keep frames in order, tracker results for a frame may only be added once
	if n := len(t.Records); n > 0 && t.Records[n-1].FrameIndex >= frameIndex {
		return ErrFrameOrder
	}

	if t.Len() > 0 && t.ClassID() != classID {
		return fmt.Errorf("track %d class %d, tube class %d: %w",
			trackID, classID, t.ClassID(), ErrClassChange)
	}

	t.Records = append(t.Records, rec)

	return nil
}

// Tubes returns every track with at least minLength observations in order of
// first appearance.  Shorter tracks are discarded.  The returned tubes hold
// their own record slices, later calls to Add do not change them
func (b *Builder) Tubes(minLength int) []*Tube {
	b.Lock()
	defer b.Unlock()

	out := make([]*Tube, 0, len(b.order))

	for _, id := range b.order {
		t := b.history[id]

		if t.Len() < minLength {
			b.log.WithFields(logrus.Fields{
				"track_id":   id,
				"length":     t.Len(),
				"min_length": minLength,
			}).Debug("Discarding short track")
			continue
		}

		out = append(out, &Tube{
			TrackID: t.TrackID,
			Records: slices.Clone(t.Records),
		})
	}

	b.log.WithFields(logrus.Fields{
		"tubes":      len(out),
		"tracks":     len(b.order),
		"min_length": minLength,
	}).Info("Extracted tubes")

	return out
}

// IsDropped reports if err is one of the errors Add uses for an observation
// that was skipped rather than a misuse of the builder
func IsDropped(err error) bool {
	return errors.Is(err, ErrEmptyMask) || errors.Is(err, ErrInvalidBox)
}
