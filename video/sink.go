package video

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/render"
	"gocv.io/x/gocv"
)

// DefaultPattern names synopsis files by their class group label
const DefaultPattern = "segmented_synopsis_cls_%s.mp4"

// FileSink writes each synopsis as an mp4v encoded video file
type FileSink struct {
	// Dir is the output directory
	Dir string
	// Pattern is a fmt pattern receiving the group label
	Pattern string
	// Codec is the FourCC code of the encoder
	Codec string
	log   *logrus.Entry
}

// NewFileSink returns a sink writing to dir using the given file name pattern
func NewFileSink(dir, pattern string, log *logrus.Entry) *FileSink {

	if pattern == "" {
		pattern = DefaultPattern
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &FileSink{
		Dir:     dir,
		Pattern: pattern,
		Codec:   "mp4v",
		log:     log,
	}
}

// Path returns the output file path for a group label
func (s *FileSink) Path(label string) string {
	return filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, label))
}

// Write encodes frames at fps into the file for label
func (s *FileSink) Write(label string, frames []*composite.Frame, fps float64) error {

	if len(frames) == 0 {
		s.log.WithField("label", label).Warn("Synopsis has no frames, nothing written")
		return nil
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	path := s.Path(label)

	vw, err := gocv.VideoWriterFile(path, s.Codec, fps, frames[0].Width, frames[0].Height, true)

	if err != nil {
		return fmt.Errorf("error opening video writer %s: %w", path, err)
	}

	defer vw.Close()

	for i, f := range frames {
		mat, err := render.FrameToMat(f)

		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		err = vw.Write(mat)
		mat.Close()

		if err != nil {
			return fmt.Errorf("error writing frame %d to %s: %w", i, path, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"path":   path,
		"frames": len(frames),
		"fps":    fps,
	}).Info("Saved synopsis")

	return nil
}
