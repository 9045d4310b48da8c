package synopsis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/schedule"
	"github.com/swdee/go-synopsis/tube"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSizeMismatch is returned when the background and source frames differ
	// in size
	ErrSizeMismatch = errors.New("background and source frame size differ")
	// ErrNoBackground is returned when a run is started without a background
	ErrNoBackground = errors.New("no background frame")
)

// Sink receives the rendered synopsis of each class group
type Sink interface {
	// Write stores the frames of the synopsis for the group label
	Write(label string, frames []*composite.Frame, fps float64) error
}

// Input is the data a synopsis is rendered from
type Input struct {
	// Frames are the decoded source video frames, indexed by frame index
	Frames composite.FrameSource
	// Background is the static scene every synopsis frame starts from
	Background *composite.Frame
	// Tubes are the tracked objects found in Frames
	Tubes []*tube.Tube
	// Labels are the detector class names
	Labels Labels
}

// GroupReport describes the outcome of rendering one class group
type GroupReport struct {
	Key   tube.GroupKey
	Label string
	// Tubes is the number of tubes in the group
	Tubes int
	// Length is the number of synopsis frames
	Length int
	// Skipped counts tube records that were not rendered
	Skipped  int
	Duration time.Duration
	Err      error
}

// Report describes the outcome of a synopsis run
type Report struct {
	RunID string
	// Dropped is the number of input tubes that failed validation or were
	// shorter than the minimum length
	Dropped int
	// Filtered is the number of tubes removed by the class filter
	Filtered int
	// Discarded is the number of tubes the refiner left without enough
	// frames
	Discarded int
	Groups    []GroupReport
}

// Pipeline renders per class synopsis videos from tracked object tubes
type Pipeline struct {
	cfg        *Config
	compositor *composite.Compositor
	log        *logrus.Entry
}

// NewPipeline returns a pipeline for the given configuration.  The annotator
// draws the box and frame index overlay, a nil annotator uses the pure Go
// composite.BoxAnnotator in the configured color
func NewPipeline(cfg *Config, annotator composite.Annotator, log *logrus.Entry) *Pipeline {

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	if annotator == nil {
		// config validation has already checked the color
		clr, _ := composite.ParseColor(cfg.Composite.Color)
		annotator = composite.NewBoxAnnotator(clr, cfg.Composite.LineThickness)
	}

	return &Pipeline{
		cfg:        cfg,
		compositor: composite.NewCompositor(cfg.CompositeParams(), annotator, log),
		log:        log,
	}
}

// SetDistanceTransform sets the distance transform the soft masks are built
// with, the default is composite.ExactDistance.  It must be called before Run
func (p *Pipeline) SetDistanceTransform(dt composite.DistanceTransform) {
	p.compositor.SetDistanceTransform(dt)
}

// Run prepares the tubes, then schedules, composes and writes one synopsis
// per class group and one for all classes combined.  A failing group does not
// stop the other groups, the errors of all failed groups are returned joined
// together along with the report
func (p *Pipeline) Run(ctx context.Context, in Input, sink Sink) (*Report, error) {

	rep := &Report{
		RunID: uuid.NewString(),
	}

	log := p.log.WithField("run_id", rep.RunID)

	if in.Background == nil {
		return rep, ErrNoBackground
	}

	width, height := in.Background.Width, in.Background.Height

	if in.Frames == nil {
		in.Frames = composite.Frames{}
	}

	if in.Frames.Len() > 0 {
		first, err := in.Frames.Frame(0)

		if err != nil {
			return rep, err
		}

		if !first.SameSize(in.Background) {
			return rep, fmt.Errorf("background %dx%d, source %dx%d: %w",
				width, height, first.Width, first.Height, ErrSizeMismatch)
		}
	}

	tubes, err := p.prepare(in, width, height, rep, log)

	if err != nil {
		return rep, err
	}

	groups := tube.GroupByClass(tubes)
	rep.Groups = make([]GroupReport, len(groups))

	log.WithFields(logrus.Fields{
		"tubes":  len(tubes),
		"groups": len(groups),
	}).Info("Rendering synopsis groups")

	var eg errgroup.Group
	eg.SetLimit(max(1, p.cfg.Output.Workers))

	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			rep.Groups[i] = p.runGroup(ctx, in, g, width, height, sink, log)
			return nil
		})
	}

	// groups record their own errors in the report, Go never returns one
	_ = eg.Wait()

	var errs []error

	for _, gr := range rep.Groups {
		if gr.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", gr.Label, gr.Err))
		}
	}

	return rep, errors.Join(errs...)
}

// prepare validates, filters, merges and refines the input tubes
func (p *Pipeline) prepare(in Input, width, height int, rep *Report,
	log *logrus.Entry) ([]*tube.Tube, error) {

	tubes := make([]*tube.Tube, 0, len(in.Tubes))

	for _, t := range in.Tubes {
		if err := t.Validate(width, height); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"track_id":    t.TrackID,
				"first_frame": t.FirstFrame(),
			}).Warn("Dropping invalid tube")
			rep.Dropped++
			continue
		}

		if t.Len() < p.cfg.Tubes.MinLength {
			log.WithFields(logrus.Fields{
				"track_id": t.TrackID,
				"length":   t.Len(),
			}).Debug("Dropping short tube")
			rep.Dropped++
			continue
		}

		tubes = append(tubes, t)
	}

	if len(p.cfg.Tubes.KeepClasses) > 0 {
		keep := make([]int, 0, len(p.cfg.Tubes.KeepClasses))

		for _, name := range p.cfg.Tubes.KeepClasses {
			cid, ok := in.Labels.ClassID(name)

			if !ok {
				return nil, fmt.Errorf("keep class %q is not a known label: %w", name, ErrConfig)
			}

			keep = append(keep, cid)
		}

		kept := tube.FilterClass(tubes, keep...)
		rep.Filtered = len(tubes) - len(kept)
		tubes = kept
	}

	if p.cfg.Tubes.MergePrimary != "" {
		primary, ok := in.Labels.ClassID(p.cfg.Tubes.MergePrimary)

		if !ok {
			return nil, fmt.Errorf("merge class %q is not a known label: %w",
				p.cfg.Tubes.MergePrimary, ErrConfig)
		}

		secondary, ok := in.Labels.ClassID(p.cfg.Tubes.MergeSecondary)

		if !ok {
			return nil, fmt.Errorf("merge class %q is not a known label: %w",
				p.cfg.Tubes.MergeSecondary, ErrConfig)
		}

		tubes = tube.MergeOverlapping(tubes, primary, secondary, p.cfg.Tubes.MergeIoU)
	}

	refined := tube.RefineAll(tubes, p.cfg.RefineParams())
	rep.Discarded = len(tubes) - len(refined)

	log.WithFields(logrus.Fields{
		"input":     len(in.Tubes),
		"dropped":   rep.Dropped,
		"filtered":  rep.Filtered,
		"discarded": rep.Discarded,
		"kept":      len(refined),
	}).Info("Prepared tubes")

	return refined, nil
}

// runGroup schedules, composes and writes the synopsis of a single group
func (p *Pipeline) runGroup(ctx context.Context, in Input, g tube.Group, width, height int,
	sink Sink, log *logrus.Entry) (gr GroupReport) {

	start := time.Now()

	gr = GroupReport{
		Key:   g.Key,
		Label: in.Labels.GroupName(g.Key),
		Tubes: len(g.Tubes),
	}

	log = log.WithField("group", gr.Label)

	defer func() {
		gr.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		gr.Err = err
		return gr
	}

	// longest tubes are placed first
	order := schedule.SortByLength(g.Tubes)
	sorted := make([]*tube.Tube, len(order))

	for i, idx := range order {
		sorted[i] = g.Tubes[idx]
	}

	res, err := schedule.Schedule(sorted, width, height)

	if err != nil {
		gr.Err = fmt.Errorf("schedule: %w", err)
		return gr
	}

	if err := schedule.Verify(sorted, res); err != nil {
		gr.Err = fmt.Errorf("verify schedule: %w", err)
		return gr
	}

	gr.Length = res.Length

	syn, err := p.compositor.Compose(ctx, in.Frames, in.Background, sorted, res.Shifts, res.Length)

	if err != nil {
		gr.Err = fmt.Errorf("compose: %w", err)
		return gr
	}

	gr.Skipped = syn.Skipped

	if syn.Skipped > 0 {
		log.WithField("skipped", syn.Skipped).Warn("Tube records were not rendered")
	}

	if err := sink.Write(gr.Label, syn.Frames, p.cfg.Output.FPS); err != nil {
		gr.Err = fmt.Errorf("write: %w", err)
		return gr
	}

	log.WithFields(logrus.Fields{
		"tubes":  gr.Tubes,
		"length": gr.Length,
	}).Info("Synopsis written")

	return gr
}
