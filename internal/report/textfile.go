// FILENAME: internal/report/textfile.go
package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xkilldash9x/gbench/internal/models"
)

const namespace = "gbench"

var taskLabels = []string{"run_id", "ipc", "task", "role"}

type taskGauge struct {
	vec   *prometheus.GaugeVec
	value func(models.TaskResult) float64
}

func newTaskGauge(name, help string, value func(models.TaskResult) float64) taskGauge {
	return taskGauge{
		vec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      name,
			Help:      help,
		}, taskLabels),
		value: value,
	}
}

// Registry builds a Prometheus registry holding the final values of r.
func Registry(r *models.Report) (*prometheus.Registry, error) {
	gauges := []taskGauge{
		newTaskGauge("run_budget_microseconds", "Configured compute time per iteration.",
			func(t models.TaskResult) float64 { return float64(t.RunTime) }),
		newTaskGauge("run_avg_microseconds", "Smoothed compute time per iteration.",
			func(t models.TaskResult) float64 { return float64(t.AvgRunTime) }),
		newTaskGauge("run_frequency_hertz", "Smoothed run frequency over the full cycle.",
			func(t models.TaskResult) float64 { return float64(t.RunFreq) }),
		newTaskGauge("wait_budget_microseconds", "Configured sleep time per iteration.",
			func(t models.TaskResult) float64 { return float64(t.WaitTime) }),
		newTaskGauge("wait_avg_microseconds", "Smoothed time between compute bursts.",
			func(t models.TaskResult) float64 { return float64(t.AvgWaitTime) }),
		newTaskGauge("wait_frequency_hertz", "Smoothed wait frequency over the full cycle.",
			func(t models.TaskResult) float64 { return float64(t.WaitFreq) }),
		newTaskGauge("iterations", "Completed wake, compute, sleep cycles.",
			func(t models.TaskResult) float64 { return float64(t.Count) }),
		newTaskGauge("voluntary_context_switches", "Voluntary context switches of the task thread.",
			func(t models.TaskResult) float64 { return float64(t.VoluntarySwitches) }),
		newTaskGauge("involuntary_context_switches", "Involuntary context switches of the task thread.",
			func(t models.TaskResult) float64 { return float64(t.InvoluntarySwitches) }),
	}

	reg := prometheus.NewRegistry()
	for _, g := range gauges {
		if err := reg.Register(g.vec); err != nil {
			return nil, err
		}
		for _, t := range r.Tasks {
			g.vec.WithLabelValues(r.RunID, r.Mechanism, t.Key(), t.Role).Set(g.value(t))
		}
	}

	elapsed := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "elapsed_seconds",
		Help:        "Wall time between start and the join of every task.",
		ConstLabels: prometheus.Labels{"run_id": r.RunID, "ipc": r.Mechanism},
	})
	if err := reg.Register(elapsed); err != nil {
		return nil, err
	}
	elapsed.Set(r.Elapsed.Seconds())
	return reg, nil
}

// WriteTextfile writes r in the node_exporter textfile collector format.
func WriteTextfile(path string, r *models.Report) error {
	reg, err := Registry(r)
	if err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
