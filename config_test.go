package synopsis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Tubes.MinLength)
	assert.Equal(t, 5.0, cfg.Refine.MinDisplacement)
	assert.Equal(t, 1, cfg.Refine.MinFrames)
	assert.Equal(t, 20.0, cfg.Composite.BorderWidth)
	assert.Equal(t, 1, cfg.Output.Workers)
	assert.Equal(t, "exact", cfg.Composite.Distance)
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	data := []byte(`
[video]
max_frames = 200

[tubes]
keep_classes = ["person", "bicycle"]
merge_primary = "person"
merge_secondary = "bicycle"

[composite]
border_width = 8.5
color = "#ff8000"
distance = "gocv"

[output]
workers = 4
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Video.MaxFrames)
	assert.Equal(t, 640, cfg.Video.Width, "missing keys keep their default")
	assert.Equal(t, []string{"person", "bicycle"}, cfg.Tubes.KeepClasses)
	assert.Equal(t, 8.5, cfg.CompositeParams().BorderWidth)
	assert.True(t, cfg.CompositeParams().Annotate)
	assert.Equal(t, 4, cfg.Output.Workers)
	assert.Equal(t, "gocv", cfg.Composite.Distance)
	assert.Equal(t, 5.0, cfg.RefineParams().MinDisplacement)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"workers", "[output]\nworkers = 0"},
		{"fps", "[output]\nfps = -1.0"},
		{"background", "[video]\nbackground = \"mode\""},
		{"rate", "[video]\nbackground = \"average\"\nlearning_rate = 2.0"},
		{"merge pair", "[tubes]\nmerge_primary = \"person\""},
		{"border", "[composite]\nborder_width = -1.0"},
		{"annotator", "[composite]\nannotator = \"svg\""},
		{"distance", "[composite]\ndistance = \"manhattan\""},
		{"color", "[composite]\ncolor = \"mauve\""},
		{"min length", "[tubes]\nmin_length = 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.data))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}

	_, err := ParseConfig([]byte("[output\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synopsis.toml")
	require.NoError(t, os.WriteFile(path, []byte("[refine]\nmin_displacement = 2.5\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Refine.MinDisplacement)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
