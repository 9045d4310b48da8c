package video

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/render"
	"gocv.io/x/gocv"
)

// ReaderParams defines how frames are read from a source video
type ReaderParams struct {
	// MaxFrames is the maximum number of frames to read, 0 reads all
	MaxFrames int
	// Width and Height every frame is resized to, 0 keeps the source size
	Width  int
	Height int
}

// DefaultReaderParams returns the defaults of reading up to 1000 frames
// resized to 640x380
func DefaultReaderParams() ReaderParams {
	return ReaderParams{
		MaxFrames: 1000,
		Width:     640,
		Height:    380,
	}
}

// Source is a decoded video held in memory
type Source struct {
	composite.Frames
	// FPS is the frame rate reported by the container
	FPS float64
}

// LoadFrames decodes the video file at path into memory, resizing every
// frame with area interpolation
func LoadFrames(path string, p ReaderParams, log *logrus.Entry) (*Source, error) {

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	vc, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("error opening video %s: %w", path, err)
	}

	defer vc.Close()

	src := &Source{
		FPS: vc.Get(gocv.VideoCaptureFPS),
	}

	img := gocv.NewMat()
	defer img.Close()

	resized := gocv.NewMat()
	defer resized.Close()

	for p.MaxFrames <= 0 || len(src.Frames) < p.MaxFrames {

		if ok := vc.Read(&img); !ok || img.Empty() {
			break
		}

		use := img

		if p.Width > 0 && p.Height > 0 && (img.Cols() != p.Width || img.Rows() != p.Height) {
			gocv.Resize(img, &resized, image.Pt(p.Width, p.Height), 0, 0, gocv.InterpolationArea)
			use = resized
		}

		f, err := render.MatToFrame(use)

		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(src.Frames), err)
		}

		src.Frames = append(src.Frames, f)
	}

	if len(src.Frames) == 0 {
		return nil, fmt.Errorf("no frames decoded from %s", path)
	}

	log.WithFields(logrus.Fields{
		"path":   path,
		"frames": len(src.Frames),
		"width":  src.Frames[0].Width,
		"height": src.Frames[0].Height,
		"fps":    src.FPS,
	}).Info("Loaded video frames")

	return src, nil
}
