package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	th "github.com/desertthunder/listsync/internal/testing"
)

func sampleRuns() []*models.SyncRun {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := models.NewSyncRun(2, "alice", "bob", started)
	ok.SetOutcomes([]models.ListOutcome{
		{Name: "Friends", AddedLeft: 1, AddedRight: 2, TotalLeft: 5, TotalRight: 5, Changed: true},
		{Name: "Work", TotalLeft: 3, TotalRight: 3},
	})
	ok.Finish("List sync complete. Made changes to lists Friends.", started.Add(time.Minute), nil)

	failed := models.NewSyncRun(1, "alice", "bob", started.Add(-time.Hour))
	failed.Finish("", started.Add(-time.Hour+time.Second), errors.New("API request failed"))

	return []*models.SyncRun{ok, failed}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleRuns())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Run,Started,Status,List,AddedLeft,AddedRight,TotalLeft,TotalRight") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "2,2026-03-01T12:00:00Z,succeeded,Friends,1,2,5,5") {
			t.Errorf("CSV missing Friends outcome, got: %s", output)
		}
		if !strings.Contains(output, "1,2026-03-01T11:00:00Z,failed,,,,,") {
			t.Errorf("CSV missing row for run without outcomes, got: %s", output)
		}

		if lines := strings.Count(output, "\n"); lines != 4 {
			t.Errorf("expected 4 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleRuns())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Sync History",
			"## Run #2 (2026-03-01 12:00:00)",
			"**Summary**: List sync complete. Made changes to lists Friends.",
			"| Friends | 1 | 2 | 5 | 5 |",
			"**Error**: API request failed",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleRuns())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "changed: Friends\n") {
			t.Errorf("text missing changed lists, got:\n%s", output)
		}
		if strings.Contains(output, "Work") {
			t.Errorf("unchanged lists should not be listed, got:\n%s", output)
		}
		if !strings.Contains(output, "failed  alice/bob  error: API request failed") {
			t.Errorf("text missing failure line, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleRuns())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(decoded))
		}
		if decoded[0]["status"] != "succeeded" || decoded[1]["error"] != "API request failed" {
			t.Errorf("unexpected JSON content: %v", decoded)
		}
		if outcomes := decoded[0]["outcomes"].([]any); len(outcomes) != 2 {
			t.Errorf("expected 2 outcomes, got %d", len(outcomes))
		}
	})

	t.Run("Empty", func(t *testing.T) {
		for _, format := range []string{FormatText, FormatMarkdown} {
			data, err := Export(nil, format)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", format, err)
			}
			if !strings.Contains(string(data), "No runs recorded.") {
				t.Errorf("%s: expected empty message, got %q", format, data)
			}
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := Export(sampleRuns(), "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")

		if err := WriteExport(sampleRuns(), FormatCSV, path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Run,") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("Empty Path", func(t *testing.T) {
		if err := WriteExport(sampleRuns(), FormatCSV, ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "history.json")
		if err := WriteExport(sampleRuns(), FormatJSON, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
