// package formatter renders sync run history as CSV, Markdown, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// Supported history formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

const timeLayout = "2006-01-02 15:04:05"

// Export renders runs in the named format.
func Export(runs []*models.SyncRun, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ExportToText(runs)
	case FormatMarkdown, "md":
		return ExportToMarkdown(runs)
	case FormatCSV:
		return ExportToCSV(runs)
	case FormatJSON:
		return ExportToJSON(runs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV writes one row per list outcome with columns:
// Run, Started, Status, List, AddedLeft, AddedRight, TotalLeft, TotalRight.
//
// Runs without outcomes still get a single row with empty list columns.
func ExportToCSV(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Run", "Started", "Status", "List", "AddedLeft", "AddedRight", "TotalLeft", "TotalRight"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		base := []string{strconv.Itoa(run.Sequence()), run.StartedAt().Format(time.RFC3339), string(run.Status())}
		if len(run.Outcomes()) == 0 {
			if err := writer.Write(append(base, "", "", "", "", "")); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}
		for _, o := range run.Outcomes() {
			record := append(append([]string(nil), base...),
				o.Name,
				strconv.Itoa(o.AddedLeft),
				strconv.Itoa(o.AddedRight),
				strconv.Itoa(o.TotalLeft),
				strconv.Itoa(o.TotalRight),
			)
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders each run as a section with an outcome table
func ExportToMarkdown(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Sync History\n\n")
	if len(runs) == 0 {
		buf.WriteString("No runs recorded.\n")
		return buf.Bytes(), nil
	}

	for _, run := range runs {
		fmt.Fprintf(&buf, "## Run #%d (%s)\n\n", run.Sequence(), run.StartedAt().Format(timeLayout))
		fmt.Fprintf(&buf, "**Accounts**: %s / %s\n", run.LeftName(), run.RightName())
		fmt.Fprintf(&buf, "**Status**: %s\n", run.Status())
		if run.Summary() != "" {
			fmt.Fprintf(&buf, "**Summary**: %s\n", run.Summary())
		}
		if run.ErrorMessage() != "" {
			fmt.Fprintf(&buf, "**Error**: %s\n", run.ErrorMessage())
		}
		buf.WriteString("\n")

		if len(run.Outcomes()) == 0 {
			continue
		}

		fmt.Fprintf(&buf, "| List | Added to %s | Added to %s | Total %s | Total %s |\n", run.LeftName(), run.RightName(), run.LeftName(), run.RightName())
		buf.WriteString("|---|---:|---:|---:|---:|\n")
		for _, o := range run.Outcomes() {
			fmt.Fprintf(&buf, "| %s | %d | %d | %d | %d |\n", o.Name, o.AddedLeft, o.AddedRight, o.TotalLeft, o.TotalRight)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders one line per run followed by its changed lists
func ExportToText(runs []*models.SyncRun) ([]byte, error) {
	var buf bytes.Buffer

	if len(runs) == 0 {
		buf.WriteString("No runs recorded.\n")
		return buf.Bytes(), nil
	}

	for _, run := range runs {
		fmt.Fprintf(&buf, "#%d  %s  %s  %s/%s", run.Sequence(), run.StartedAt().Format(timeLayout), run.Status(), run.LeftName(), run.RightName())
		if run.Status() == models.RunFailed {
			fmt.Fprintf(&buf, "  error: %s\n", run.ErrorMessage())
			continue
		}
		buf.WriteString("\n")
		if changed := run.ChangedLists(); len(changed) > 0 {
			fmt.Fprintf(&buf, "    changed: %s\n", shared.JoinNames(changed))
		}
	}

	return buf.Bytes(), nil
}

type outcomeJSON struct {
	Name       string `json:"name"`
	AddedLeft  int    `json:"added_left"`
	AddedRight int    `json:"added_right"`
	TotalLeft  int    `json:"total_left"`
	TotalRight int    `json:"total_right"`
	Changed    bool   `json:"changed"`
}

type runJSON struct {
	ID         string        `json:"id"`
	Sequence   int           `json:"sequence"`
	Left       string        `json:"left"`
	Right      string        `json:"right"`
	Status     string        `json:"status"`
	Summary    string        `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Outcomes   []outcomeJSON `json:"outcomes"`
}

// ExportToJSON renders runs as an indented JSON array
func ExportToJSON(runs []*models.SyncRun) ([]byte, error) {
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		r := runJSON{
			ID:        run.ID(),
			Sequence:  run.Sequence(),
			Left:      run.LeftName(),
			Right:     run.RightName(),
			Status:    string(run.Status()),
			Summary:   run.Summary(),
			Error:     run.ErrorMessage(),
			StartedAt: run.StartedAt(),
			Outcomes:  make([]outcomeJSON, 0, len(run.Outcomes())),
		}
		if t := run.FinishedAt(); !t.IsZero() {
			r.FinishedAt = &t
		}
		for _, o := range run.Outcomes() {
			r.Outcomes = append(r.Outcomes, outcomeJSON(o))
		}
		out = append(out, r)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders runs in format and writes them to path.
func WriteExport(runs []*models.SyncRun, format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", shared.ErrInvalidArgument)
	}

	data, err := Export(runs, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
