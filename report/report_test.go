package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/YuminosukeSato/soilsense/dataset"
	"github.com/YuminosukeSato/soilsense/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCanonical(t *testing.T) *pipeline.Outcome {
	t.Helper()
	ds, err := dataset.Default()
	require.NoError(t, err)
	out, err := pipeline.Run(context.Background(), ds)
	require.NoError(t, err)
	return out
}

func TestPrint(t *testing.T) {
	out := runCanonical(t)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, out))
	got := buf.String()

	// セクションは順番通り
	last := -1
	for _, title := range []string{TitleRawData, TitlePredictions, TitleClusters, TitleSummary} {
		idx := strings.Index(got, title)
		require.GreaterOrEqual(t, idx, 0, "missing %q", title)
		assert.Greater(t, idx, last, "%q out of order", title)
		last = idx
	}

	assert.Contains(t, got, "85.45")
	assert.Contains(t, got, "90.0 mL")
	assert.Contains(t, got, "100.0 mL")
	assert.Contains(t, got, "85.35%")
	assert.Contains(t, got, fmt.Sprintf("%.2f%%", out.Results[0].Predicted))
	assert.Contains(t, got, out.RunID)
	assert.Contains(t, got, "Cluster 2 center")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("pipe closed") }

func TestPrintWriteError(t *testing.T) {
	out := runCanonical(t)
	err := Print(failingWriter{}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe closed")
}

func TestPrintNilOutcome(t *testing.T) {
	assert.Error(t, Print(&bytes.Buffer{}, nil))
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, "n/a", formatMetric(math.NaN()))
	assert.Equal(t, "0.1235", formatMetric(0.123456))
	assert.Equal(t, "48.4", formatNumber(48.40))
}
