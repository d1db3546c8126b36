// FILENAME: internal/task/coordinator.go
package task

import (
	"context"
	"fmt"
	"runtime"

	"github.com/xkilldash9x/gbench/internal/clock"
	"github.com/xkilldash9x/gbench/internal/sync/barrier"
	"github.com/xkilldash9x/gbench/internal/wake"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CoordinatorLoop drives the coordinator thread, which owns the hub and
// spawns and joins every worker.
type CoordinatorLoop struct {
	Task    *Task
	Workers []*Task
	Hub     wake.Hub
	Stop    *StopFlag
	Logger  *zap.Logger

	// Fatal is called with the first wake channel failure of any task, from
	// that task's goroutine. A broken channel invalidates the whole run, so
	// it is expected not to return. If it does, the coordinator stops the
	// run and releases every worker before joining.
	Fatal func(error)
}

// Run spawns the workers, opens the start line and runs the coordinator
// cycle until the stop flag is observed. It returns after every worker has
// exited.
func (c *CoordinatorLoop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t := c.Task
	t.TID = threadID()
	defer func() { t.Switches = threadSwitches() }()

	if t.CPU >= 0 {
		if err := pin(t.CPU); err != nil {
			c.Logger.Warn("Could not pin coordinator", zap.Int("cpu", t.CPU), zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	start := barrier.NewSpinBarrier(len(c.Workers))

	abort := func(err error) error {
		cancel()
		c.Stop.Raise()
		_ = c.Hub.Release()
		_ = g.Wait()
		return err
	}

	for i, wt := range c.Workers {
		link, err := c.Hub.Open(i)
		if err != nil {
			return abort(fmt.Errorf("opening channel for worker %d: %w", i, err))
		}
		w := &WorkerLoop{Task: wt, Link: link, Stop: c.Stop, Start: start, Logger: c.Logger}
		g.Go(func() error {
			err := w.Run(gctx)
			if err != nil && gctx.Err() == nil {
				c.fail(err)
			}
			return err
		})
	}
	c.Logger.Debug("Workers spawned", zap.Int("workers", len(c.Workers)))

	if err := c.Hub.Ready(); err != nil {
		return abort(fmt.Errorf("hub setup: %w", err))
	}
	if err := start.WaitReady(gctx); err != nil {
		return abort(fmt.Errorf("waiting for workers: %w", err))
	}
	start.Release()
	c.Logger.Debug("Start line released", zap.Int("tid", t.TID))

	if err := c.loop(); err != nil {
		c.fail(err)
		return abort(err)
	}

	if err := g.Wait(); err != nil {
		return err
	}
	c.Logger.Debug("Workers joined", zap.Uint64("coordinator_cycles", t.Stat.Count))
	return nil
}

func (c *CoordinatorLoop) loop() error {
	t := c.Task
	sw := clock.NewStopwatch()
	for {
		stopped, err := c.Hub.Exchange(c.Stop)
		if err != nil {
			return fmt.Errorf("coordinator exchange: %w", err)
		}
		if stopped {
			return nil
		}

		t.cycle(sw)
		t.Stat.Count++
	}
}

func (c *CoordinatorLoop) fail(err error) {
	if c.Fatal != nil {
		c.Fatal(err)
	}
}
