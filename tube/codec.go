package tube

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// ErrBadRLE is returned when a run length encoded mask does not decode to
// the declared frame size
var ErrBadRLE = errors.New("run length encoding does not match mask size")

// File is the on disk format tube sets are exchanged in with the detector and
// tracker
type File struct {
	// Width and Height of the source frames the masks are aligned to
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Tubes  []fileTube `json:"tubes"`
}

type fileTube struct {
	TrackID int64        `json:"track_id"`
	ClassID int          `json:"class_id"`
	Records []fileRecord `json:"records"`
}

type fileRecord struct {
	Frame int    `json:"frame"`
	BBox  [4]int `json:"bbox"`
	// Mask holds run lengths over the row major mask, alternating between
	// unset and set pixels and starting with unset
	Mask []int `json:"mask"`
}

// EncodeRLE run length encodes the mask
func EncodeRLE(m *Mask) []int {

	var counts []int
	var cur uint8
	run := 0

	for _, v := range m.Data {
		if v != 0 {
			v = 1
		}

		if v != cur {
			counts = append(counts, run)
			cur = v
			run = 0
		}

		run++
	}

	return append(counts, run)
}

// DecodeRLE rebuilds a mask of the given size from its run lengths
func DecodeRLE(width, height int, counts []int) (*Mask, error) {

	m := NewMask(width, height)
	pos := 0

	for i, n := range counts {
		if n < 0 || pos+n > len(m.Data) {
			return nil, ErrBadRLE
		}

		if i%2 == 1 {
			for j := pos; j < pos+n; j++ {
				m.Data[j] = 1
			}
		}

		pos += n
	}

	if pos != len(m.Data) {
		return nil, ErrBadRLE
	}

	return m, nil
}

// Decode reads a tube file.  Records are fed through a Builder so the tube
// file follows the same rules as live tracker output: records with an empty
// mask or box without area are skipped and tubes with fewer than minLength
// records are discarded.  All other decoding errors are returned.  A nil log
// uses the standard logrus logger
func Decode(r io.Reader, minLength int, log *logrus.Entry) (tubes []*Tube, width, height int, err error) {

	var f File

	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, 0, 0, fmt.Errorf("error decoding tube file: %w", err)
	}

	if f.Width <= 0 || f.Height <= 0 {
		return nil, 0, 0, fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}

	b := NewBuilder(f.Width, f.Height, log)

	for _, ft := range f.Tubes {
		for _, fr := range ft.Records {
			mask, err := DecodeRLE(f.Width, f.Height, fr.Mask)

			if err != nil {
				return nil, 0, 0, fmt.Errorf("track %d frame %d: %w", ft.TrackID, fr.Frame, err)
			}

			err = b.Add(ft.TrackID, ft.ClassID, fr.Frame, mask,
				NewBBox(fr.BBox[0], fr.BBox[1], fr.BBox[2], fr.BBox[3]))

			if IsDropped(err) {
				continue
			}

			if err != nil {
				return nil, 0, 0, fmt.Errorf("track %d frame %d: %w", ft.TrackID, fr.Frame, err)
			}
		}
	}

	return b.Tubes(minLength), f.Width, f.Height, nil
}

// Encode writes tubes for frames of the given size as a tube file
func Encode(w io.Writer, tubes []*Tube, width, height int) error {

	f := File{
		Width:  width,
		Height: height,
		Tubes:  make([]fileTube, 0, len(tubes)),
	}

	for _, t := range tubes {
		ft := fileTube{
			TrackID: t.TrackID,
			ClassID: t.ClassID(),
			Records: make([]fileRecord, 0, t.Len()),
		}

		for _, rec := range t.Records {
			ft.Records = append(ft.Records, fileRecord{
				Frame: rec.FrameIndex,
				BBox:  [4]int{rec.Box.Left, rec.Box.Top, rec.Box.Right, rec.Box.Bottom},
				Mask:  EncodeRLE(rec.Mask),
			})
		}

		f.Tubes = append(f.Tubes, ft)
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("error encoding tube file: %w", err)
	}

	return nil
}
