package synopsis

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/swdee/go-synopsis/composite"
	"github.com/swdee/go-synopsis/tube"
)

// ErrConfig is returned for an invalid configuration value
var ErrConfig = errors.New("invalid configuration")

// Config defines the parameters of a synopsis run
type Config struct {
	Video     VideoConfig     `toml:"video"`
	Tubes     TubesConfig     `toml:"tubes"`
	Refine    RefineConfig    `toml:"refine"`
	Composite CompositeConfig `toml:"composite"`
	Output    OutputConfig    `toml:"output"`
}

// VideoConfig controls decoding of the source video and background
// estimation
type VideoConfig struct {
	// MaxFrames is the maximum number of source frames decoded
	MaxFrames int `toml:"max_frames"`
	// Width and Height every source frame is resized to
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Background is the estimator used, median or average
	Background string `toml:"background"`
	// BackgroundStep samples every n'th frame for the median background
	BackgroundStep int `toml:"background_step"`
	// LearningRate is the weight of each new frame for the average background
	LearningRate float64 `toml:"learning_rate"`
}

// TubesConfig controls which tubes take part in the synopsis
type TubesConfig struct {
	// MinLength is the minimum number of observations for a tube
	MinLength int `toml:"min_length"`
	// KeepClasses restricts the synopsis to these class labels, empty keeps
	// all classes
	KeepClasses []string `toml:"keep_classes"`
	// MergePrimary and MergeSecondary name the classes merged together when
	// they overlap, eg: person and bicycle.  Empty disables merging
	MergePrimary   string  `toml:"merge_primary"`
	MergeSecondary string  `toml:"merge_secondary"`
	MergeIoU       float64 `toml:"merge_iou"`
}

// RefineConfig controls displacement based subsampling of tubes
type RefineConfig struct {
	MinDisplacement float64 `toml:"min_displacement"`
	MinFrames       int     `toml:"min_frames"`
}

// CompositeConfig controls synopsis rendering
type CompositeConfig struct {
	// BorderWidth is the soft mask fade width in pixels
	BorderWidth float64 `toml:"border_width"`
	// Annotate draws bounding boxes and source frame indices
	Annotate bool `toml:"annotate"`
	// Annotator selects the renderer for annotations, basic or gocv
	Annotator string `toml:"annotator"`
	// Distance selects the distance transform of the soft mask, exact or gocv
	Distance string `toml:"distance"`
	// Color of annotations, a name or #RRGGBB
	Color         string `toml:"color"`
	LineThickness int    `toml:"line_thickness"`
}

// OutputConfig controls where and how synopsis videos are written
type OutputConfig struct {
	Dir string `toml:"dir"`
	// Pattern is a fmt pattern receiving the class group label
	Pattern string  `toml:"pattern"`
	FPS     float64 `toml:"fps"`
	// Workers is the number of class groups rendered concurrently
	Workers int `toml:"workers"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	rp := tube.DefaultRefineParams()

	return &Config{
		Video: VideoConfig{
			MaxFrames:      1000,
			Width:          640,
			Height:         380,
			Background:     "median",
			BackgroundStep: 5,
			LearningRate:   0.05,
		},
		Tubes: TubesConfig{
			MinLength: tube.DefaultMinLength,
			MergeIoU:  0.1,
		},
		Refine: RefineConfig{
			MinDisplacement: rp.MinDisplacement,
			MinFrames:       rp.MinFrames,
		},
		Composite: CompositeConfig{
			BorderWidth:   composite.DefaultBorderWidth,
			Annotate:      true,
			Annotator:     "basic",
			Distance:      "exact",
			Color:         "cyan",
			LineThickness: 2,
		},
		Output: OutputConfig{
			Dir:     ".",
			Pattern: "segmented_synopsis_cls_%s.mp4",
			FPS:     10,
			Workers: 1,
		},
	}
}

// LoadConfig reads a TOML configuration file.  Keys missing from the file
// keep their default value
func LoadConfig(path string) (*Config, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses TOML configuration data over the defaults
func ParseConfig(data []byte) (*Config, error) {

	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration values are usable
func (c *Config) Validate() error {

	switch {
	case c.Video.Width < 0 || c.Video.Height < 0:
		return fmt.Errorf("video size %dx%d: %w", c.Video.Width, c.Video.Height, ErrConfig)
	case c.Video.Background != "median" && c.Video.Background != "average":
		return fmt.Errorf("video.background %q: %w", c.Video.Background, ErrConfig)
	case c.Video.Background == "average" && (c.Video.LearningRate <= 0 || c.Video.LearningRate > 1):
		return fmt.Errorf("video.learning_rate %v: %w", c.Video.LearningRate, ErrConfig)
	case c.Tubes.MinLength < 1:
		return fmt.Errorf("tubes.min_length %d: %w", c.Tubes.MinLength, ErrConfig)
	case (c.Tubes.MergePrimary == "") != (c.Tubes.MergeSecondary == ""):
		return fmt.Errorf("tubes.merge_primary and merge_secondary must be set together: %w", ErrConfig)
	case c.Refine.MinDisplacement < 0:
		return fmt.Errorf("refine.min_displacement %v: %w", c.Refine.MinDisplacement, ErrConfig)
	case c.Composite.BorderWidth < 0:
		return fmt.Errorf("composite.border_width %v: %w", c.Composite.BorderWidth, ErrConfig)
	case c.Composite.Annotator != "basic" && c.Composite.Annotator != "gocv":
		return fmt.Errorf("composite.annotator %q: %w", c.Composite.Annotator, ErrConfig)
	case c.Composite.Distance != "exact" && c.Composite.Distance != "gocv":
		return fmt.Errorf("composite.distance %q: %w", c.Composite.Distance, ErrConfig)
	case c.Output.FPS <= 0:
		return fmt.Errorf("output.fps %v: %w", c.Output.FPS, ErrConfig)
	case c.Output.Workers < 1:
		return fmt.Errorf("output.workers %d: %w", c.Output.Workers, ErrConfig)
	}

	if _, err := composite.ParseColor(c.Composite.Color); err != nil {
		return fmt.Errorf("composite.color: %w: %w", err, ErrConfig)
	}

	return nil
}

// RefineParams returns the refiner parameters
func (c *Config) RefineParams() tube.RefineParams {
	return tube.RefineParams{
		MinDisplacement: c.Refine.MinDisplacement,
		MinFrames:       c.Refine.MinFrames,
	}
}

// CompositeParams returns the compositor parameters
func (c *Config) CompositeParams() composite.Params {
	return composite.Params{
		BorderWidth: c.Composite.BorderWidth,
		Annotate:    c.Composite.Annotate,
	}
}
