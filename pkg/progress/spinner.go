// Package progress draws a console indicator while a long step runs.
// It never touches the work it decorates.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the redraw period of the animation.
const DefaultInterval = 500 * time.Millisecond

// Spinner animates "label." .. "label..." on one console line until stopped.
type Spinner struct {
	w        io.Writer
	label    string
	interval time.Duration

	stopped atomic.Bool
	wake    chan struct{}
	g       errgroup.Group
}

// Option configures a Spinner.
type Option func(*Spinner)

// WithInterval sets the redraw period.
func WithInterval(d time.Duration) Option {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Start begins drawing to w in a background goroutine.
func Start(w io.Writer, label string, opts ...Option) *Spinner {
	s := &Spinner{
		w:        w,
		label:    label,
		interval: DefaultInterval,
		wake:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.g.Go(s.run)
	return s
}

func (s *Spinner) run() error {
	pad := strings.Repeat(" ", 3)
	for dots := 0; !s.stopped.Load(); dots = (dots + 1) % 4 {
		if _, err := fmt.Fprintf(s.w, "\r%s%s%s", s.label, strings.Repeat(".", dots), pad); err != nil {
			return err
		}
		select {
		case <-s.wake:
		case <-time.After(s.interval):
		}
	}
	_, err := fmt.Fprintf(s.w, "\r%s done!%s\n", s.label, strings.Repeat(" ", 8))
	return err
}

// Stop ends the animation and waits until the final line is written.
// Calling Stop more than once is safe.
func (s *Spinner) Stop() error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.wake)
	}
	return s.g.Wait()
}
