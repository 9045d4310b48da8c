package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-synopsis"
	"github.com/swdee/go-synopsis/background"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/render"
	"github.com/swdee/go-synopsis/tube"
	"github.com/swdee/go-synopsis/video"
)

func main() {

	// read in cli flags
	configFile := flag.String("c", "", "TOML configuration file, defaults are used when not set")
	videoFile := flag.String("v", "../data/traffic.mp4", "Source video the tubes were tracked on")
	tubeFile := flag.String("t", "../data/traffic-tubes.json", "JSON file of tracked object tubes")
	labelFile := flag.String("l", "../data/coco_80_labels_list.txt", "Text file containing model labels")
	outDir := flag.String("o", "", "Output directory, overrides the configuration")
	dumpDir := flag.String("d", "", "Directory to write a cutout video of every tube to for debugging")
	logLevel := flag.String("log", "info", "Log level [debug|info|warn|error]")

	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)

	if err != nil {
		logrus.Fatal("Invalid log level: ", err)
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.WithField("component", "synopsis")

	cfg := synopsis.DefaultConfig()

	if *configFile != "" {
		cfg, err = synopsis.LoadConfig(*configFile)

		if err != nil {
			log.Fatal("Error loading configuration: ", err)
		}
	}

	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	// load in Model class names
	labels, err := synopsis.LoadLabels(*labelFile)

	if err != nil {
		log.Fatal("Error loading model labels: ", err)
	}

	start := time.Now()

	src, err := video.LoadFrames(*videoFile, video.ReaderParams{
		MaxFrames: cfg.Video.MaxFrames,
		Width:     cfg.Video.Width,
		Height:    cfg.Video.Height,
	}, log)

	if err != nil {
		log.Fatal("Error reading video: ", err)
	}

	tubes, width, height, err := loadTubes(*tubeFile, cfg.Tubes.MinLength, log)

	if err != nil {
		log.Fatal("Error reading tubes: ", err)
	}

	if len(src.Frames) > 0 && (width != src.Frames[0].Width || height != src.Frames[0].Height) {
		log.WithFields(logrus.Fields{
			"tubes": fmt.Sprintf("%dx%d", width, height),
			"video": fmt.Sprintf("%dx%d", src.Frames[0].Width, src.Frames[0].Height),
		}).Warn("Tube masks were recorded at a different size than the video is read at")
	}

	endLoad := time.Now()

	var bg *composite.Frame

	switch cfg.Video.Background {
	case "average":
		bg, err = background.RunningAverage(src.Frames, cfg.Video.LearningRate)
	default:
		bg, err = background.Median(src.Frames, cfg.Video.BackgroundStep)
	}

	if err != nil {
		log.Fatal("Error estimating background: ", err)
	}

	endBackground := time.Now()

	if *dumpDir != "" {
		fps := src.FPS

		if fps <= 0 {
			fps = cfg.Output.FPS
		}

		if err := dumpTubes(*dumpDir, src, tubes, fps, log); err != nil {
			log.Fatal("Error dumping tubes: ", err)
		}
	}

	var annotator composite.Annotator

	if cfg.Composite.Annotator == "gocv" {
		clr, _ := composite.ParseColor(cfg.Composite.Color)
		annotator = render.NewMatAnnotator(clr, cfg.Composite.LineThickness, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink := video.NewFileSink(cfg.Output.Dir, cfg.Output.Pattern, log)
	pipeline := synopsis.NewPipeline(cfg, annotator, log)

	if cfg.Composite.Distance == "gocv" {
		pipeline.SetDistanceTransform(render.NewMatDistance())
	}

	rep, err := pipeline.Run(ctx, synopsis.Input{
		Frames:     src.Frames,
		Background: bg,
		Tubes:      tubes,
		Labels:     labels,
	}, sink)

	endRender := time.Now()

	// output group summary to stdout
	for _, g := range rep.Groups {
		status := "ok"

		if g.Err != nil {
			status = g.Err.Error()
		}

		fmt.Printf("%s: tubes=%d frames=%d skipped=%d time=%s %s\n", g.Label, g.Tubes,
			g.Length, g.Skipped, g.Duration.String(), status)
	}

	log.Printf("Run %s speed: load=%s, background=%s, synopsis=%s, total time=%s\n",
		rep.RunID,
		endLoad.Sub(start).String(),
		endBackground.Sub(endLoad).String(),
		endRender.Sub(endBackground).String(),
		endRender.Sub(start).String(),
	)

	if err != nil {
		log.Fatal("Synopsis failed: ", err)
	}

	log.Println("done")
}

// loadTubes reads the tracked tubes from a JSON file, discarding tubes shorter
// than minLength
func loadTubes(path string, minLength int, log *logrus.Entry) ([]*tube.Tube, int, int, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, 0, 0, err
	}

	defer f.Close()

	return tube.Decode(f, minLength, log)
}

// dumpTubes writes a video of each tube showing only its object pixels
func dumpTubes(dir string, src *video.Source, tubes []*tube.Tube, fps float64,
	log *logrus.Entry) error {

	sink := video.NewFileSink(dir, "tube_%s.mp4", log)

	for _, t := range tubes {
		frames := make([]*composite.Frame, 0, t.Len())

		for _, rec := range t.Records {
			f, err := src.Frame(rec.FrameIndex)

			if err != nil {
				return fmt.Errorf("track %d: %w", t.TrackID, err)
			}

			if f.Width != rec.Mask.Width || f.Height != rec.Mask.Height {
				log.WithField("track_id", t.TrackID).Warn("Tube mask does not match video size, not dumped")
				frames = nil
				break
			}

			frames = append(frames, composite.Cutout(f, rec.Mask))
		}

		err := sink.Write(strconv.FormatInt(t.TrackID, 10), frames, fps)

		if err != nil {
			return err
		}
	}

	return nil
}
