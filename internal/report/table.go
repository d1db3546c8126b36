// FILENAME: internal/report/table.go
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/xkilldash9x/gbench/internal/config"
	"github.com/xkilldash9x/gbench/internal/models"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(config.ColorHeader)

// Header is the first line of the results table.
var Header = fmt.Sprintf("# thread\t %10s  %10s  %10s  %10s  %10s  %10s  %10s",
	"run_t", "run_a", "run_f", "wait_t", "wait_a", "wait_f", "cnt")

// FormatLine renders one task as a table row.
func FormatLine(t models.TaskResult) string {
	return fmt.Sprintf("%s\t  %10d  %10d  %10d  %10d  %10d  %10d  %10d",
		t.Label(),
		t.RunTime, t.AvgRunTime, t.RunFreq,
		t.WaitTime, t.AvgWaitTime, t.WaitFreq,
		t.Count)
}

// WriteTable prints the header and one line per task. Styled colors the
// header and should only be set when out is a terminal.
func WriteTable(out io.Writer, r *models.Report, styled bool) error {
	header := Header
	if styled {
		header = headerStyle.Render(header)
	}
	if _, err := fmt.Fprintln(out, header); err != nil {
		return err
	}
	for _, t := range r.Tasks {
		if _, err := fmt.Fprintln(out, FormatLine(t)); err != nil {
			return err
		}
	}
	return nil
}
