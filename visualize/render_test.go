package visualize

import (
	"image"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/soilsense/pipeline"
	"github.com/YuminosukeSato/soilsense/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() pipeline.Series {
	return pipeline.Series{
		Raw: []pipeline.Point{
			{X: 0, Y: 0.96}, {X: 10, Y: 10.95}, {X: 20, Y: 29.97}, {X: 90, Y: 85.35}, {X: 100, Y: 85.45},
		},
		Regression: []pipeline.Point{{X: 90, Y: 68.7}, {X: 100, Y: 53.6}},
		Clusters: []pipeline.ClusterPoint{
			{X: 90, Y: 85.35, Cluster: 2}, {X: 100, Y: 85.45, Cluster: 2}, {X: 5, Y: 3, Cluster: 0},
		},
	}
}

func decodeSize(t *testing.T, path string) image.Config {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return cfg
}

func TestRenderWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	require.NoError(t, Render(path, sampleSeries()))

	cfg := decodeSize(t, path)
	assert.Equal(t, Width, cfg.Width)
	assert.Equal(t, Height, cfg.Height)
}

func TestRenderOnlyRawData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.png")
	s := pipeline.Series{Raw: sampleSeries().Raw}
	require.NoError(t, Render(path, s))

	cfg := decodeSize(t, path)
	assert.Equal(t, Width, cfg.Width)
	assert.Equal(t, Height, cfg.Height)
}

func TestRenderUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "plot.png")
	err := Render(path, sampleSeries())

	var renderErr *errors.RenderError
	require.True(t, errors.As(err, &renderErr), "got %v", err)
	assert.Equal(t, path, renderErr.Path)
}

func TestRenderNonFinitePoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	s := sampleSeries()
	s.Regression = append(s.Regression, pipeline.Point{X: 95, Y: math.Inf(1)})

	err := Render(path, s)
	var renderErr *errors.RenderError
	require.True(t, errors.As(err, &renderErr), "got %v", err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be written")
}
