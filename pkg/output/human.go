package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/copypix/pkg/models"
)

// HumanFormatter prints one line per file and a summary
type HumanFormatter struct {
	writer       io.Writer
	printSkipped bool
	totalFiles   int
	startTime    time.Time
}

// NewHumanFormatter creates a new human-readable formatter writing to w
// (stdout if nil). Identical files are only listed when printSkipped is set.
func NewHumanFormatter(w io.Writer, printSkipped bool) *HumanFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &HumanFormatter{writer: w, printSkipped: printSkipped}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer != nil {
		f.writer = writer
	}
	f.totalFiles = totalFiles
	f.startTime = time.Now()

	if totalFiles == 0 {
		fmt.Fprintln(f.writer, "No files to copy found")
		return nil
	}
	fmt.Fprintf(f.writer, "Found %d files to copy\n", totalFiles)
	return nil
}

// Progress prints the outcome of one file
func (f *HumanFormatter) Progress(event models.Event) error {
	if event.Outcome == models.OutcomeSkippedIdentical && !f.printSkipped {
		return nil
	}
	fmt.Fprintln(f.writer, eventLine(event))
	return nil
}

// Complete prints the files needing attention and the summary
func (f *HumanFormatter) Complete(report *models.RunReport) error {
	return writeSummary(f.writer, report)
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	fmt.Fprintf(f.writer, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func eventLine(event models.Event) string {
	line := fmt.Sprintf("[%d/%d] %s: %s", event.Index, event.Total, event.Name, event.Outcome.Label())

	if c := event.File; c != nil {
		switch event.Outcome {
		case models.OutcomeCopied:
			line += fmt.Sprintf(" (%s in %s)", formatBytes(c.BytesCopied()), formatDuration(c.Duration()))
		case models.OutcomeSkippedIdentical, models.OutcomeSkippedConflict:
			line += fmt.Sprintf(" (%s)", formatDuration(c.Duration()))
		}
	}

	if event.Err != nil {
		line += fmt.Sprintf(": %v", event.Err)
	}
	return line
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
