// FILENAME: internal/task/worker.go
package task

import (
	"context"
	"fmt"
	"runtime"

	"github.com/xkilldash9x/gbench/internal/clock"
	"github.com/xkilldash9x/gbench/internal/sync/barrier"
	"github.com/xkilldash9x/gbench/internal/wake"
	"go.uber.org/zap"
)

// WorkerLoop drives one worker thread.
type WorkerLoop struct {
	Task   *Task
	Link   wake.Link
	Stop   *StopFlag
	Start  *barrier.SpinBarrier
	Logger *zap.Logger
}

// Run locks the calling goroutine to its OS thread for the worker's whole
// life, waits at the start line, then cycles ping, block, compute, sleep
// until the stop flag is seen. It returns only wake channel failures and
// start-line cancellation.
func (w *WorkerLoop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t := w.Task
	t.TID = threadID()
	defer func() { t.Switches = threadSwitches() }()

	if t.CPU >= 0 {
		if err := pin(t.CPU); err != nil {
			w.Logger.Warn("Could not pin worker", zap.Int("worker", t.Index), zap.Int("cpu", t.CPU), zap.Error(err))
		}
	}

	if err := w.Start.Await(ctx); err != nil {
		return err
	}

	sw := clock.NewStopwatch()
	for {
		if w.Stop.Stopped() {
			return nil
		}
		if err := w.Link.Signal(); err != nil {
			return fmt.Errorf("%s ping: %w", t, err)
		}

		// Never block once stopping: the coordinator's final release may
		// already have gone out.
		if w.Stop.Stopped() {
			return nil
		}
		if err := w.Link.Await(); err != nil {
			return fmt.Errorf("%s await: %w", t, err)
		}

		t.cycle(sw)
		t.Stat.Count++
	}
}
