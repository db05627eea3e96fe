package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/storage"
)

func resolved(name string, outcome models.Outcome, err error) *models.CandidateFile {
	c := models.NewCandidateFile(name, "/card", "/archive", 4)
	if outcome == models.OutcomeCopied || outcome == models.OutcomeCopiedWithError {
		c.SetTransfer(4, nil)
	}
	c.SetDuration(3 * time.Millisecond)
	c.Resolve(outcome, err)
	return c
}

func testReport() *models.RunReport {
	files := []*models.CandidateFile{
		resolved("a.jpg", models.OutcomeCopied, nil),
		resolved("b.jpg", models.OutcomeSkippedIdentical, nil),
		resolved("c.cr2", models.OutcomeSkippedConflict, nil),
		resolved("d.jpg", models.OutcomeFailed, &models.FileError{Op: models.OpOpenSource, Path: "/card/d.jpg", Err: errors.New("permission denied")}),
		resolved("e.jpg", models.OutcomeCopiedWithError, models.ErrVerificationMismatch),
	}
	stats := models.ComputeStatistics(files)
	return &models.RunReport{
		OperationID: "run-1",
		SourcePath:  "/card",
		DestPath:    "/archive",
		Duration:    2 * time.Second,
		Stats:       stats,
		Files:       files,
		Status:      models.StatusFor(stats),
	}
}

func feed(t *testing.T, f Formatter, report *models.RunReport) {
	t.Helper()
	if err := f.Start(nil, len(report.Files)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i, file := range report.Files {
		if err := f.Progress(models.NewEvent(i+1, len(report.Files), file)); err != nil {
			t.Fatalf("Progress() error = %v", err)
		}
	}
	if err := f.Complete(report); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestHumanFormatter(t *testing.T) {
	tests := []struct {
		name         string
		printSkipped bool
		wantSkipped  bool
	}{
		{"skipped hidden", false, false},
		{"skipped printed", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			feed(t, NewHumanFormatter(&buf, tt.printSkipped), testReport())
			out := buf.String()

			for _, want := range []string{
				"Found 5 files to copy",
				"[1/5] a.jpg: copied",
				"[3/5] c.cr2: different file exists, skipped",
				"[4/5] d.jpg: not copied: open-source /card/d.jpg: permission denied",
				"Not copied (1):",
				"Copied with errors (1):",
				"Different file exists in destination (1):",
				"Average per file",
				"Status: partial",
			} {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}

			if got := strings.Contains(out, "[2/5] b.jpg"); got != tt.wantSkipped {
				t.Errorf("identical file listed = %v, want %v", got, tt.wantSkipped)
			}
		})
	}
}

func TestHumanFormatter_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(&buf, false)
	feed(t, f, &models.RunReport{Status: models.StatusSuccess})

	if !strings.Contains(buf.String(), "No files to copy found") {
		t.Errorf("output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "Average per file") {
		t.Error("average per file needs at least one file")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	feed(t, NewJSONFormatter(&buf), testReport())

	var data JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if data.Status != "partial" {
		t.Errorf("Status = %s, want partial", data.Status)
	}
	if data.Stats.Total != 5 || data.Stats.Copied != 1 || data.Stats.Failed != 1 {
		t.Errorf("Stats = %+v", data.Stats)
	}
	if data.Stats.BytesCopied != 8 {
		t.Errorf("BytesCopied = %d, want 8", data.Stats.BytesCopied)
	}
	if len(data.Files) != 5 {
		t.Fatalf("Files = %d, want 5", len(data.Files))
	}
	if data.Files[3].FailedOp != "open-source" {
		t.Errorf("FailedOp = %q, want open-source", data.Files[3].FailedOp)
	}
}

func TestJSONFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	f.Error(models.InvalidInputf("source /nowhere is not a directory"))

	var data JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if data.Status != "failed" || !strings.Contains(data.Error, "not a directory") {
		t.Errorf("data = %+v", data)
	}
}

func TestProgressFormatter_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	feed(t, NewProgressFormatter(&buf, false), testReport())

	out := buf.String()
	if !strings.Contains(out, "[1/5] a.jpg: copied") {
		t.Errorf("non-terminal output should fall back to plain lines:\n%s", out)
	}
	if !strings.Contains(out, "Status: partial") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{25 * 1024 * 1024, "25.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestWriteAttentionReport(t *testing.T) {
	backend := storage.NewMemory()
	fs := backend.Fs()
	afero.WriteFile(fs, "/card/c.cr2", []byte("source raw"), 0644)
	afero.WriteFile(fs, "/archive/c.cr2", []byte("other raw file"), 0644)

	t.Run("human", func(t *testing.T) {
		written, err := WriteAttentionReport(context.Background(), testReport(), backend, "/reports/attention.txt", "human")
		if err != nil || !written {
			t.Fatalf("WriteAttentionReport() = %v, %v", written, err)
		}

		data, _ := afero.ReadFile(fs, "/reports/attention.txt")
		out := string(data)
		for _, want := range []string{"Total: 3", "Not copied (1)", "c.cr2", "Source: 10 B", "Dest:   14 B", "verification mismatch"} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		written, err := WriteAttentionReport(context.Background(), testReport(), backend, "/reports/attention.json", "json")
		if err != nil || !written {
			t.Fatalf("WriteAttentionReport() = %v, %v", written, err)
		}

		data, _ := afero.ReadFile(fs, "/reports/attention.json")
		var doc attentionDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("report is not JSON: %v", err)
		}
		if len(doc.Files) != 3 {
			t.Fatalf("Files = %d, want 3", len(doc.Files))
		}
		for _, entry := range doc.Files {
			if entry.Outcome != models.OutcomeSkippedConflict {
				continue
			}
			if entry.Source == nil || entry.Source.Size != 10 || entry.Dest == nil || entry.Dest.Size != 14 {
				t.Errorf("conflict entry = %+v", entry)
			}
			if entry.Source.Captured != nil {
				t.Error("files without EXIF have no capture time")
			}
		}
	})

	t.Run("nothing to report", func(t *testing.T) {
		report := &models.RunReport{Files: []*models.CandidateFile{resolved("a.jpg", models.OutcomeCopied, nil)}}
		written, err := WriteAttentionReport(context.Background(), report, backend, "/reports/empty.txt", "human")
		if err != nil || written {
			t.Errorf("WriteAttentionReport() = %v, %v; want false, nil", written, err)
		}
		if ok, _ := afero.Exists(fs, "/reports/empty.txt"); ok {
			t.Error("no report file should be created")
		}
	})
}
