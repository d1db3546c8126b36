// FILENAME: internal/wake/futex_hub.go
package wake

import "fmt"

// FutexHub connects the coordinator to every worker through futex words.
// The coordinator pongs all workers at once at the start of each exchange
// instead of replying to individual pings.
type FutexHub struct {
	self    *Futex
	workers []*Futex
}

type futexLink struct {
	own   *Futex
	coord *Futex
}

// Signal arms the worker's own word, then pings the coordinator. Arming
// first means a pong that races the ping is never lost.
func (l *futexLink) Signal() error {
	l.own.Arm()
	return l.coord.Signal()
}

func (l *futexLink) Await() error {
	_, err := l.own.Await(0)
	return err
}

// NewFutexHub returns a hub for n workers.
func NewFutexHub(n int) *FutexHub {
	return &FutexHub{
		self:    NewFutex(),
		workers: make([]*Futex, n),
	}
}

func (h *FutexHub) Open(i int) (Link, error) {
	if err := checkIndex(i, len(h.workers)); err != nil {
		return nil, err
	}
	if h.workers[i] != nil {
		return nil, fmt.Errorf("wake: worker %d already open", i)
	}
	w := NewFutex()
	h.workers[i] = w
	return &futexLink{own: w, coord: h.self}, nil
}

func (h *FutexHub) Ready() error {
	for i, w := range h.workers {
		if w == nil {
			return fmt.Errorf("wake: worker %d never opened", i)
		}
	}
	return nil
}

func (h *FutexHub) Exchange(stop Stopper) (bool, error) {
	if stop.Stopped() {
		return true, h.Release()
	}

	h.self.Arm()
	if err := h.Release(); err != nil {
		return false, err
	}
	if stop.Stopped() {
		return true, h.Release()
	}

	if _, err := h.self.Await(0); err != nil {
		return false, err
	}
	if stop.Stopped() {
		return true, h.Release()
	}
	return false, nil
}

func (h *FutexHub) Release() error {
	for _, w := range h.workers {
		if w == nil {
			continue
		}
		if err := w.Signal(); err != nil {
			return err
		}
	}
	return nil
}

// Interrupt signals the coordinator's word. The coordinator waits without a
// timeout, so the controller must call this after raising the stop flag.
func (h *FutexHub) Interrupt() error { return h.self.Signal() }

func (h *FutexHub) Close() error { return nil }
