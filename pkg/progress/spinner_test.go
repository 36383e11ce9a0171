package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets the test read what the spinner goroutine wrote.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerWritesUntilStopped(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "Training SVR", WithInterval(time.Millisecond))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Training SVR...")
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	got := out.String()
	assert.True(t, strings.HasSuffix(got, "\rTraining SVR done!        \n"), "got %q", got)

	// 停止後は何も書かない
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, got, out.String())
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "x", WithInterval(time.Hour))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Equal(t, 1, strings.Count(out.String(), "done!"))
}

func TestSpinnerStopsPromptly(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "x", WithInterval(time.Hour))
	start := time.Now()
	require.NoError(t, s.Stop())
	assert.Less(t, time.Since(start), time.Second)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestSpinnerReportsWriteError(t *testing.T) {
	s := Start(failingWriter{}, "x", WithInterval(time.Millisecond))
	assert.EqualError(t, s.Stop(), "closed")
}
