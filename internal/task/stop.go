// FILENAME: internal/task/stop.go
package task

import "sync/atomic"

// StopFlag ends a benchmark. It goes from false to true exactly once and
// never back. Go atomics are sequentially consistent, so every Stopped call
// is a full fence against the Raise that set it.
type StopFlag struct {
	v atomic.Bool
}

// Raise sets the flag. It reports whether this call was the one that set it;
// later or concurrent calls have no effect.
func (f *StopFlag) Raise() bool {
	return f.v.CompareAndSwap(false, true)
}

// Stopped reports whether the flag has been raised.
func (f *StopFlag) Stopped() bool {
	return f.v.Load()
}
