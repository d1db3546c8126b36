// FILENAME: internal/bench/bench.go
package bench

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/xkilldash9x/gbench/internal/config"
	"github.com/xkilldash9x/gbench/internal/models"
	"github.com/xkilldash9x/gbench/internal/task"
	"github.com/xkilldash9x/gbench/internal/wake"
	"go.uber.org/zap"
)

// Controller owns one benchmark run: it sets up every task, lets the
// coordinator and workers run for the configured duration, stops them and
// collects their stats.
type Controller struct {
	cfg     config.Config
	logger  *zap.Logger
	fatal   func(error)
	newHub  func(config.Mechanism, int) (wake.Hub, error)
	stop    task.StopFlag
	coord   *task.Task
	workers []*task.Task
}

// Option customizes a Controller.
type Option func(*Controller)

// WithFatalHandler replaces the handler for wake channel failures during the
// run. The default logs at fatal level, which exits the process.
func WithFatalHandler(fn func(error)) Option {
	return func(c *Controller) { c.fatal = fn }
}

// WithHubFactory replaces how the wake hub is built.
func WithHubFactory(fn func(config.Mechanism, int) (wake.Hub, error)) Option {
	return func(c *Controller) { c.newHub = fn }
}

// New validates cfg and allocates every task, including all scratch
// buffers. Any failure here happens before a single thread is started.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:    cfg,
		logger: logger,
		newHub: wake.NewHub,
	}
	c.fatal = func(err error) {
		c.logger.Fatal("Wake channel failure, measurement invalid", zap.Error(err))
	}
	for _, opt := range opts {
		opt(c)
	}

	coord, err := task.New(task.Coordinator, -1, cfg.Coordinator, cfg.FootprintKB, cfg.CPUFor(0))
	if err != nil {
		return nil, fmt.Errorf("allocating coordinator: %w", err)
	}
	c.coord = coord

	c.workers = make([]*task.Task, len(cfg.Workers))
	for i, b := range cfg.Workers {
		w, err := task.New(task.Worker, i, b, cfg.FootprintKB, cfg.CPUFor(i+1))
		if err != nil {
			return nil, fmt.Errorf("allocating worker %d: %w", i, err)
		}
		c.workers[i] = w
	}

	logger.Debug("Tasks allocated",
		zap.Int("workers", len(c.workers)),
		zap.Int("matrix_side", coord.Buf.Side()),
		zap.Uint64("footprint_kb", cfg.FootprintKB))
	return c, nil
}

// Run executes the benchmark. It returns early, still with a report, if ctx
// is cancelled. It only returns once every task thread has exited.
func (c *Controller) Run(ctx context.Context) (*models.Report, error) {
	hub, err := c.newHub(c.cfg.Mechanism, len(c.workers))
	if err != nil {
		return nil, fmt.Errorf("wake hub: %w", err)
	}
	defer func() {
		if err := hub.Close(); err != nil {
			c.logger.Warn("Closing wake hub", zap.Error(err))
		}
	}()

	if !c.cfg.KeepGC {
		// Buffers are allocated up front and the loops do not allocate.
		oldGC := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(oldGC)
	}

	loop := &task.CoordinatorLoop{
		Task:    c.coord,
		Workers: c.workers,
		Hub:     hub,
		Stop:    &c.stop,
		Logger:  c.logger,
		Fatal:   c.fatal,
	}

	report := models.NewReport(c.cfg.Mechanism.String(), c.cfg.FootprintKB)
	report.MatrixSide = c.coord.Buf.Side()
	report.Duration = c.cfg.Duration
	report.StartedAt = time.Now()

	c.logger.Info("Benchmark started",
		zap.String("run_id", report.RunID),
		zap.Stringer("ipc", c.cfg.Mechanism),
		zap.Int("workers", len(c.workers)),
		zap.Duration("duration", c.cfg.Duration))

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	timer := time.NewTimer(c.cfg.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		report.Interrupted = true
		c.logger.Warn("Interrupted, stopping early", zap.Error(ctx.Err()))
	case err := <-done:
		// The coordinator only returns on its own when setup failed.
		if err == nil {
			err = fmt.Errorf("coordinator exited before the stop flag was raised")
		}
		return nil, err
	}

	if err := c.stopAll(hub); err != nil {
		return nil, err
	}
	if err := <-done; err != nil {
		return nil, err
	}
	report.Elapsed = time.Since(report.StartedAt)

	report.Tasks = append(report.Tasks, c.coord.Result())
	for _, w := range c.workers {
		report.Tasks = append(report.Tasks, w.Result())
	}

	c.logger.Info("Benchmark complete",
		zap.String("run_id", report.RunID),
		zap.Duration("elapsed", report.Elapsed),
		zap.Uint64("coordinator_cycles", c.coord.Stat.Count))
	return report, nil
}

// stopAll raises the stop flag and nudges the coordinator in case it is
// blocked with no timeout. Calling it more than once is harmless.
func (c *Controller) stopAll(hub wake.Hub) error {
	if c.stop.Raise() {
		c.logger.Debug("Stop flag raised")
	}
	if err := hub.Interrupt(); err != nil {
		return fmt.Errorf("interrupting coordinator: %w", err)
	}
	return nil
}

// Tasks returns the coordinator followed by the workers.
func (c *Controller) Tasks() []*task.Task {
	return append([]*task.Task{c.coord}, c.workers...)
}
