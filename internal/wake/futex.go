// FILENAME: internal/wake/futex.go
package wake

import (
	"sync/atomic"
	"time"
)

// Futex word states.
const (
	Blocked uint32 = 0
	Running uint32 = 1
)

// Futex is a two-state wake word owned by one task.
// Any thread may Signal it; only the owner Arms and Awaits it.
type Futex struct {
	word atomic.Uint32
	p    parker
}

// NewFutex returns a word in the Running state.
func NewFutex() *Futex {
	f := &Futex{p: newParker()}
	f.word.Store(Running)
	return f
}

// State returns the current word.
func (f *Futex) State() uint32 { return f.word.Load() }

// Arm marks the owner as about to wait, dropping any signal left over from
// a previous round.
func (f *Futex) Arm() { f.word.Store(Blocked) }

// Signal moves the word from Blocked to Running. The wake call is only made
// when that transition happened, so a task that is not waiting costs no syscall.
func (f *Futex) Signal() error {
	if !f.word.CompareAndSwap(Blocked, Running) {
		return nil
	}
	if err := f.p.wake(&f.word); err != nil {
		return &Error{Op: "futex wake", Err: err}
	}
	return nil
}

// Await consumes a pending signal, blocking until one arrives or timeout
// elapses. A zero timeout waits forever. The word is left Blocked on success.
func (f *Futex) Await(timeout time.Duration) (Reason, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if f.word.CompareAndSwap(Running, Blocked) {
			return Signaled, nil
		}

		var remaining time.Duration
		if timeout > 0 {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return TimedOut, nil
			}
		}

		timedOut, err := f.p.wait(&f.word, Blocked, remaining)
		if err != nil {
			return Signaled, &Error{Op: "futex wait", Err: err}
		}
		if timedOut {
			return TimedOut, nil
		}
	}
}
