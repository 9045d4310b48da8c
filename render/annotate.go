package render

import (
	"image"
	"image/color"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/tube"
	"gocv.io/x/gocv"
)

// MatAnnotator draws synopsis annotations with OpenCV, giving the anti
// aliased Hershey font labels of the other rendering helpers
type MatAnnotator struct {
	// Color of the bounding box and label
	Color color.RGBA
	// LineThickness of the bounding box
	LineThickness int
	Font          Font
	log           *logrus.Entry
}

// NewMatAnnotator returns an annotator using the default font.  Frames that
// can not be annotated are logged to log, a nil log uses the standard logrus
// logger
func NewMatAnnotator(clr color.RGBA, lineThickness int, log *logrus.Entry) *MatAnnotator {

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &MatAnnotator{
		Color:         clr,
		LineThickness: lineThickness,
		Font:          DefaultFont(),
		log:           log,
	}
}

// Annotate implements composite.Annotator.  The bounding box is drawn around
// the object and the label is placed above the top left corner
func (a *MatAnnotator) Annotate(f *composite.Frame, box tube.BBox, text string) {

	// it is too slow to manipulate pixel by pixel using GoCV due to slowness
	// over CGO, so the frame bytes are wrapped as a Mat, drawn on and copied
	// back
	fields := logrus.Fields{
		"box":  box.Rect().String(),
		"text": text,
	}

	if len(f.Pix) != f.Width*f.Height*3 {
		a.log.WithFields(fields).Warnf("Frame %dx%d holds %d bytes, annotation skipped",
			f.Width, f.Height, len(f.Pix))
		return
	}

	img, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)

	if err != nil {
		a.log.WithError(err).WithFields(fields).Warn("Error creating Mat from frame, annotation skipped")
		return
	}

	defer img.Close()

	gocv.Rectangle(&img, box.Rect(), a.Color, a.LineThickness)

	if text != "" {
		labelPosition := image.Pt(box.Left, max(box.Top-a.Font.BottomPad, 0))

		gocv.PutTextWithParams(&img, text, labelPosition,
			a.Font.Face, a.Font.Scale, a.Color, a.Font.Thickness,
			a.Font.LineType, false)
	}

	copy(f.Pix, img.ToBytes())
}
