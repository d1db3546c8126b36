// FILENAME: internal/report/writer.go
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xkilldash9x/gbench/internal/models"
)

// Writer handles artifact generation.
type Writer struct {
	BaseDir string
}

func NewWriter(baseDir string) *Writer {
	return &Writer{BaseDir: baseDir}
}

// WriteArtifacts saves the report to disk as JSON and CSV and returns the
// paths written.
func (w *Writer) WriteArtifacts(r *models.Report, prefix string) ([]string, error) {
	if err := os.MkdirAll(w.BaseDir, 0755); err != nil {
		return nil, err
	}

	timestamp := r.StartedAt.Format("20060102-150405")
	baseName := fmt.Sprintf("%s-%s-%s", prefix, r.Mechanism, timestamp)

	jsonPath := filepath.Join(w.BaseDir, baseName+".json")
	if err := w.writeJSON(r, jsonPath); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(w.BaseDir, baseName+".csv")
	if err := w.writeCSV(r, csvPath); err != nil {
		return nil, err
	}

	return []string{jsonPath, csvPath}, nil
}

func (w *Writer) writeJSON(r *models.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var csvHeader = []string{
	"RunID", "IPC", "Task", "TID",
	"RunTime(us)", "AvgRunTime(us)", "RunFreq(Hz)",
	"WaitTime(us)", "AvgWaitTime(us)", "WaitFreq(Hz)",
	"Count", "VoluntarySwitches", "InvoluntarySwitches",
}

func (w *Writer) writeCSV(r *models.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	for _, t := range r.Tasks {
		row := []string{
			r.RunID,
			r.Mechanism,
			t.Key(),
			strconv.Itoa(t.TID),
			u(t.RunTime), u(t.AvgRunTime), u(t.RunFreq),
			u(t.WaitTime), u(t.AvgWaitTime), u(t.WaitFreq),
			u(t.Count),
			strconv.FormatInt(t.VoluntarySwitches, 10),
			strconv.FormatInt(t.InvoluntarySwitches, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
