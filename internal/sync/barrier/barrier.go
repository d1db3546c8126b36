// FILENAME: internal/sync/barrier/barrier.go
package barrier

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/xkilldash9x/gbench/internal/config"
)

// SpinBarrier is a start line for benchmark threads.
// Each participant announces itself from its own locked OS thread and spins
// until the orchestrator opens the barrier, so the first measured cycle of
// every task begins within a few hundred nanoseconds of the others.
type SpinBarrier struct {
	target  int32
	arrived atomic.Int32
	open    atomic.Bool
	ready   chan struct{}
}

// NewSpinBarrier creates a barrier for the specified number of participants.
func NewSpinBarrier(parties int) *SpinBarrier {
	return &SpinBarrier{
		target: int32(parties),
		ready:  make(chan struct{}),
	}
}

// Await registers a participant and spins until the barrier is released.
func (b *SpinBarrier) Await(ctx context.Context) error {
	if b.arrived.Add(1) == b.target {
		close(b.ready)
	}

	spin := 0
	for !b.open.Load() {
		spin++
		if spin&(config.SpinBarrierCheck-1) == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}
	return nil
}

// Arrived reports how many participants have called Await.
func (b *SpinBarrier) Arrived() int { return int(b.arrived.Load()) }

// WaitReady blocks until all participants have called Await.
func (b *SpinBarrier) WaitReady(ctx context.Context) error {
	if b.target <= 0 {
		return nil
	}
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release opens the barrier for every spinning participant. Releasing twice is harmless.
func (b *SpinBarrier) Release() {
	b.open.Store(true)
}
