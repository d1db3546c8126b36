// FILENAME: internal/wake/futex_other.go
//go:build !linux

package wake

import (
	"sync/atomic"
	"time"
)

// parker emulates a futex with a one-slot token channel. A token posted
// between the caller's failed CAS and its receive is kept, so no wake is lost.
type parker struct {
	ch chan struct{}
}

func newParker() parker { return parker{ch: make(chan struct{}, 1)} }

func (p parker) wait(word *atomic.Uint32, val uint32, timeout time.Duration) (bool, error) {
	if word.Load() != val {
		return false, nil
	}
	if timeout <= 0 {
		<-p.ch
		return false, nil
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-p.ch:
		return false, nil
	case <-t.C:
		return true, nil
	}
}

func (p parker) wake(*atomic.Uint32) error {
	select {
	case p.ch <- struct{}{}:
	default:
	}
	return nil
}
