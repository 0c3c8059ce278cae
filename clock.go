package pram

import (
	"time"

	"github.com/zoobzio/clockz"
)

// Clock is the wall-time source used for elapsed-time reporting and the
// harness's duration stop condition. It is clockz.Clock, re-exported so
// callers outside this module don't need their own import.
type Clock = clockz.Clock

// DefaultClock is the clock used when a component isn't configured with one.
var DefaultClock = clockz.RealClock

// Stopwatch measures elapsed wall time against an injected Clock, the same
// pattern the CLI drivers use to print timing summaries.
type Stopwatch struct {
	clock Clock
	start time.Time
}

// NewStopwatch starts a stopwatch against clock. A nil clock falls back to
// DefaultClock.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = DefaultClock
	}
	return &Stopwatch{clock: clock, start: clock.Now()}
}

// Elapsed returns the duration since the stopwatch was created.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Since(s.start)
}

// Reset restarts the stopwatch at the current time.
func (s *Stopwatch) Reset() {
	s.start = s.clock.Now()
}
