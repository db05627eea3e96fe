package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sdejongh/copypix/pkg/imgmeta"
	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/storage"
)

// AttentionEntry describes one file the user has to look at
type AttentionEntry struct {
	Name         string         `json:"name"`
	Outcome      models.Outcome `json:"outcome"`
	Error        string         `json:"error,omitempty"`
	CleanupError string         `json:"cleanup_error,omitempty"`
	Source       *FileMeta      `json:"source,omitempty"`
	Dest         *FileMeta      `json:"dest,omitempty"`
}

// FileMeta is what is known about one side of a conflict
type FileMeta struct {
	Size     int64      `json:"size"`
	ModTime  time.Time  `json:"mod_time"`
	Captured *time.Time `json:"captured,omitempty"`
}

// attentionDocument is the JSON layout of the attention report
type attentionDocument struct {
	Generated   time.Time        `json:"generated"`
	OperationID string           `json:"operation_id"`
	Source      string           `json:"source"`
	Destination string           `json:"destination"`
	Files       []AttentionEntry `json:"files"`
}

// WriteAttentionReport writes the files needing attention to path.
// Format can be "human" or "json". Nothing is written when no file needs
// attention; the returned bool tells whether a report was written.
func WriteAttentionReport(ctx context.Context, report *models.RunReport, backend storage.Backend, path, format string) (bool, error) {
	entries := CollectAttention(ctx, report, backend)
	if len(entries) == 0 {
		return false, nil
	}

	w, err := backend.Create(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to create report file: %w", err)
	}

	switch format {
	case "json":
		err = writeAttentionJSON(w, report, entries)
	default: // "human"
		err = writeAttentionHuman(w, report, entries)
	}

	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("failed to write report file: %w", err)
	}
	return true, nil
}

// CollectAttention builds the attention entries of a run. Conflicts carry
// size, modification and capture times of both files so the user can tell
// which one to keep.
func CollectAttention(ctx context.Context, report *models.RunReport, backend storage.Backend) []AttentionEntry {
	var entries []AttentionEntry
	for _, file := range report.Attention() {
		entry := AttentionEntry{
			Name:    file.Name,
			Outcome: file.Outcome(),
			Error:   file.ErrorDetail(),
		}
		if file.CleanupErr() != nil {
			entry.CleanupError = file.CleanupErr().Error()
		}
		if file.Outcome() == models.OutcomeSkippedConflict {
			entry.Source = describeFile(ctx, backend, file.SourcePath())
			entry.Dest = describeFile(ctx, backend, file.DestPath())
		}
		entries = append(entries, entry)
	}
	return entries
}

func describeFile(ctx context.Context, backend storage.Backend, path string) *FileMeta {
	info, err := backend.Stat(ctx, path)
	if err != nil {
		return nil
	}
	meta := &FileMeta{Size: info.Size, ModTime: info.ModTime}
	if captured, ok, err := imgmeta.CaptureTime(ctx, backend, path); err == nil && ok {
		meta.Captured = &captured
	}
	return meta
}

func writeAttentionHuman(w io.Writer, report *models.RunReport, entries []AttentionEntry) error {
	fmt.Fprintf(w, "Files Needing Attention\n")
	fmt.Fprintf(w, "=======================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Destination: %s\n\n", report.DestPath)
	fmt.Fprintf(w, "Total: %d\n", len(entries))

	for _, section := range attentionSections {
		var group []AttentionEntry
		for _, entry := range entries {
			if entry.Outcome == section.outcome {
				group = append(group, entry)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s (%d)\n", section.title, len(group))
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(section.title)+len(fmt.Sprint(len(group)))+3))
		for _, entry := range group {
			fmt.Fprintf(w, "  %s\n", entry.Name)
			if entry.Error != "" {
				fmt.Fprintf(w, "    Error: %s\n", entry.Error)
			}
			if entry.CleanupError != "" {
				fmt.Fprintf(w, "    Cleanup: %s\n", entry.CleanupError)
			}
			if entry.Source != nil {
				fmt.Fprintf(w, "    Source: %s\n", entry.Source)
			}
			if entry.Dest != nil {
				fmt.Fprintf(w, "    Dest:   %s\n", entry.Dest)
			}
		}
	}

	return nil
}

func writeAttentionJSON(w io.Writer, report *models.RunReport, entries []AttentionEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(attentionDocument{
		Generated:   time.Now(),
		OperationID: report.OperationID,
		Source:      report.SourcePath,
		Destination: report.DestPath,
		Files:       entries,
	})
}

// String formats the metadata for the human report
func (m *FileMeta) String() string {
	s := fmt.Sprintf("%s, modified %s", formatBytes(m.Size), m.ModTime.Format("2006-01-02 15:04:05"))
	if m.Captured != nil {
		s += fmt.Sprintf(", taken %s", m.Captured.Format("2006-01-02 15:04:05"))
	}
	return s
}
