// FILENAME: internal/task/task.go
package task

import (
	"fmt"

	"github.com/xkilldash9x/gbench/internal/clock"
	"github.com/xkilldash9x/gbench/internal/config"
	"github.com/xkilldash9x/gbench/internal/models"
	"github.com/xkilldash9x/gbench/internal/stats"
	"github.com/xkilldash9x/gbench/internal/work"
)

// Role distinguishes the coordinator from the workers.
type Role int

const (
	Coordinator Role = iota
	Worker
)

func (r Role) String() string {
	if r == Coordinator {
		return models.RoleCoordinator
	}
	return models.RoleWorker
}

// Switches counts the context switches of one thread.
type Switches struct {
	Voluntary   int64
	Involuntary int64
}

// Task is one benchmark thread: the coordinator or a worker.
//
// Everything below Buf is written only by the task's own thread while it
// runs, and may be read by anyone once that thread has been joined.
type Task struct {
	Role   Role
	Index  int // worker index, -1 for the coordinator
	Budget config.Budget
	CPU    int // -1 when not pinned
	Buf    *work.Buffers

	TID      int
	Stat     stats.Stat
	Switches Switches
}

// New allocates a task and its scratch matrices.
func New(role Role, index int, budget config.Budget, footprintKB uint64, cpu int) (*Task, error) {
	buf, err := work.NewBuffers(footprintKB)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", role, index, err)
	}
	if role == Coordinator {
		index = -1
	}
	return &Task{
		Role:   role,
		Index:  index,
		Budget: budget,
		CPU:    cpu,
		Buf:    buf,
	}, nil
}

func (t *Task) String() string {
	if t.Role == Coordinator {
		return "coordinator"
	}
	return fmt.Sprintf("worker-%d", t.Index)
}

// cycle is the compute and sleep half of an iteration: run a burst for the
// run budget, fold it into the stats, then sleep for the wait budget.
func (t *Task) cycle(sw *clock.Stopwatch) {
	wait := sw.Start()
	run := work.Burst(t.Buf, sw, t.Budget.Run)
	sw.Stop(run)
	t.Stat.Update(wait, run)

	sleepMicros(t.Budget.Wait)
}

// Result snapshots the task. Call it only after the task's thread has exited.
func (t *Task) Result() models.TaskResult {
	return models.TaskResult{
		Role:                t.Role.String(),
		Index:               t.Index,
		TID:                 t.TID,
		RunTime:             t.Budget.Run,
		AvgRunTime:          t.Stat.AvgRunTime,
		RunFreq:             t.Stat.RunFreq,
		WaitTime:            t.Budget.Wait,
		AvgWaitTime:         t.Stat.AvgWaitTime,
		WaitFreq:            t.Stat.WaitFreq,
		Count:               t.Stat.Count,
		VoluntarySwitches:   t.Switches.Voluntary,
		InvoluntarySwitches: t.Switches.Involuntary,
	}
}
