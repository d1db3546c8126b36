// FILENAME: internal/wake/wake.go
package wake

import (
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/gbench/internal/config"
)

// Reason says why Await returned.
type Reason int

const (
	Signaled Reason = iota
	TimedOut
)

func (r Reason) String() string {
	if r == TimedOut {
		return "timed-out"
	}
	return "signaled"
}

// ErrUnsupported is returned when a mechanism is not available on this platform.
var ErrUnsupported = errors.New("wake: mechanism not supported on this platform")

// Error is a failure of the underlying primitive. Any Error invalidates the run.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "wake: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Stopper exposes the benchmark's stop flag. Stopped must be a sequentially
// consistent load.
type Stopper interface {
	Stopped() bool
}

// Link is a worker's end of its channel to the coordinator.
type Link interface {
	// Signal pings the coordinator, waking it if it is blocked.
	Signal() error
	// Await blocks until the coordinator replies.
	Await() error
}

// Hub is the coordinator's end of every worker channel.
type Hub interface {
	// Open creates worker i's channel. Call it right before spawning worker i.
	Open(i int) (Link, error)
	// Ready finishes setup once every worker has been opened.
	Ready() error
	// Exchange waits for worker pings and replies to them. When stop is
	// observed it performs the final Release and reports stopped.
	Exchange(stop Stopper) (stopped bool, err error)
	// Release signals every worker once, unconditionally.
	Release() error
	// Interrupt wakes the coordinator if it is blocked in Exchange.
	Interrupt() error
	// Close frees every resource. Only call it after all tasks have exited.
	Close() error
}

// NewHub builds the hub for mechanism m serving workers workers.
func NewHub(m config.Mechanism, workers int) (Hub, error) {
	if workers < config.MinWorkers {
		return nil, fmt.Errorf("%w: %d workers", config.ErrInvalidConfig, workers)
	}
	switch m {
	case config.Futex:
		return NewFutexHub(workers), nil
	case config.Pipe:
		h, err := NewPipeHub(workers, config.PollTimeout)
		if err != nil {
			return nil, err
		}
		return h, nil
	case config.Sock:
		return NewSockHub(workers), nil
	default:
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, m)
	}
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("wake: worker index %d out of range [0,%d)", i, n)
	}
	return nil
}

// durationOrZero keeps negative remaining time from turning into "no timeout".
func durationOrZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
