package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/YuminosukeSato/soilsense/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("training started", OperationKey, OperationFit, SamplesKey, 9)
	logger.Warn("slow")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "training started", entries[0]["message"])
	assert.Equal(t, OperationFit, entries[0][OperationKey])
	assert.Equal(t, 9.0, entries[0][SamplesKey])
	assert.Equal(t, "warn", entries[1]["level"])
}

func TestZerologLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ModelNameKey, "SVR", RunIDKey, "run-1")

	logger.Debug("iteration", IterationKey, 3)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "SVR", entries[0][ModelNameKey])
	assert.Equal(t, "run-1", entries[0][RunIDKey])
	assert.Equal(t, 3.0, entries[0][IterationKey])
}

func TestZerologLogger_ErrorCarriesStackAndDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	err := serrors.Wrap(serrors.NewFitError("KMeans", "2 distinct values for 3 clusters", serrors.ErrDegenerateInput), "pipeline")
	logger.Error("fit failed", err, OperationKey, OperationFit)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Contains(t, entries[0]["error"], "2 distinct values for 3 clusters")

	detail, ok := entries[0]["detail"].(map[string]interface{})
	require.True(t, ok, "expected structured detail, got %v", entries[0]["detail"])
	assert.Equal(t, "FitError", detail["type"])
	assert.Equal(t, OperationFit, entries[0][OperationKey])
}

func TestZerologLogger_Enabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("nothing", "k", "v")
	logger.Error("nothing", fmt.Errorf("boom"))
	assert.False(t, logger.Enabled(context.Background(), LevelError))
}

func TestToLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ToLogLevel("debug"))
	assert.Equal(t, LevelInfo, ToLogLevel("info"))
	assert.Equal(t, LevelWarn, ToLogLevel("warn"))
	assert.Equal(t, LevelError, ToLogLevel("error"))
	assert.Panics(t, func() { ToLogLevel("verbose") })
}

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	ctxLogger := testLogger.With(ComponentKey, "cluster")
	ctxLogger.Debug("hidden")
	ctxLogger.Info("fit done", IterationKey, 2, InertiaKey, 350.0)
	ctxLogger.Error("failed", fmt.Errorf("boom"))

	require.NotEmpty(t, buffer.String())
	assert.False(t, testLogger.ContainsMessage("hidden"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "cluster"))
	assert.True(t, testLogger.ContainsField(IterationKey, 2.0))
	assert.True(t, testLogger.ContainsField("error", "boom"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}
