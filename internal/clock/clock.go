// FILENAME: internal/clock/clock.go
package clock

import "time"

// base anchors every reading so timestamps stay small and never overflow.
var base = time.Now()

// Now returns the microseconds elapsed since process start.
// It reads the monotonic clock, so wall-clock adjustments do not affect it.
func Now() uint64 {
	return uint64(time.Since(base) / time.Microsecond)
}

// Stopwatch times compute bursts for a single task.
// It is not safe for concurrent use; each task owns its own.
type Stopwatch struct {
	start uint64 // start of the current burst
	end   uint64 // end of the previous burst
}

// NewStopwatch returns a stopwatch whose first wait interval is measured from now.
func NewStopwatch() *Stopwatch {
	now := Now()
	return &Stopwatch{start: now, end: now}
}

// Reset makes the next wait interval count from now.
func (s *Stopwatch) Reset() {
	now := Now()
	s.start, s.end = now, now
}

// Start opens a burst and returns the wait interval: the time since the
// previous burst ended.
func (s *Stopwatch) Start() uint64 {
	s.start = Now()
	if s.start < s.end {
		return 0
	}
	return s.start - s.end
}

// Elapsed reports the microseconds since the current burst started.
func (s *Stopwatch) Elapsed() uint64 {
	return Now() - s.start
}

// Stop closes the burst, which ran for run microseconds.
func (s *Stopwatch) Stop(run uint64) {
	s.end = s.start + run
}
