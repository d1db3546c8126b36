// FILENAME: internal/models/models.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task roles as they appear in reports.
const (
	RoleCoordinator = "coordinator"
	RoleWorker      = "worker"
)

// TaskResult is the final record of one task. Times are microseconds,
// frequencies are Hz.
type TaskResult struct {
	Role  string `json:"role"`
	Index int    `json:"index"`
	TID   int    `json:"tid"`

	RunTime     uint64 `json:"run_time_us"`
	AvgRunTime  uint64 `json:"avg_run_time_us"`
	RunFreq     uint64 `json:"run_freq_hz"`
	WaitTime    uint64 `json:"wait_time_us"`
	AvgWaitTime uint64 `json:"avg_wait_time_us"`
	WaitFreq    uint64 `json:"wait_freq_hz"`
	Count       uint64 `json:"count"`

	VoluntarySwitches   int64 `json:"voluntary_switches"`
	InvoluntarySwitches int64 `json:"involuntary_switches"`
}

// Label names the task the way the report table prints it.
func (r TaskResult) Label() string {
	if r.Role == RoleCoordinator {
		return fmt.Sprintf("main-thr[%d]", r.TID)
	}
	return fmt.Sprintf("worker[%d]-%d", r.TID, r.Index)
}

// Key is a stable identifier for metrics and CSV rows.
func (r TaskResult) Key() string {
	if r.Role == RoleCoordinator {
		return "main"
	}
	return fmt.Sprintf("worker-%d", r.Index)
}

// Report is the outcome of one benchmark run. Tasks holds the coordinator
// first, then the workers in order.
type Report struct {
	RunID       string        `json:"run_id"`
	Mechanism   string        `json:"mechanism"`
	FootprintKB uint64        `json:"cache_footprint_kb"`
	MatrixSide  int           `json:"matrix_side"`
	Duration    time.Duration `json:"duration_ns"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Interrupted bool          `json:"interrupted"`
	StartedAt   time.Time     `json:"started_at"`
	Tasks       []TaskResult  `json:"tasks"`
}

// NewReport starts a report with a fresh run id.
func NewReport(mechanism string, footprintKB uint64) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Mechanism:   mechanism,
		FootprintKB: footprintKB,
	}
}

// Workers returns the worker results.
func (r *Report) Workers() []TaskResult {
	var out []TaskResult
	for _, t := range r.Tasks {
		if t.Role == RoleWorker {
			out = append(out, t)
		}
	}
	return out
}

func (r *Report) String() string {
	return fmt.Sprintf("run %s: %s, %d tasks, %v", r.RunID, r.Mechanism, len(r.Tasks), r.Elapsed)
}
