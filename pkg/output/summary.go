package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdejongh/copypix/pkg/models"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A"))
)

// summaryRow is one label/value line of the summary table
type summaryRow struct {
	Label string
	Value string
}

// attentionSections lists the outcomes a user has to look at, in report order
var attentionSections = []struct {
	outcome models.Outcome
	title   string
}{
	{models.OutcomeFailed, "Not copied"},
	{models.OutcomeCopiedWithError, "Copied with errors"},
	{models.OutcomeSkippedConflict, "Different file exists in destination"},
}

// writeSummary prints every file needing attention, then the statistics
func writeSummary(w io.Writer, report *models.RunReport) error {
	fmt.Fprintln(w)

	for _, section := range attentionSections {
		files := report.FilesWith(section.outcome)
		if len(files) == 0 {
			continue
		}
		style := warnStyle
		if section.outcome != models.OutcomeSkippedConflict {
			style = errorStyle
		}
		fmt.Fprintln(w, style.Render(fmt.Sprintf("%s (%d):", section.title, len(files))))
		for _, file := range files {
			line := "  " + file.Name
			if file.Err() != nil {
				line += ": " + file.ErrorDetail()
			}
			if file.CleanupErr() != nil {
				line += " [" + file.CleanupErr().Error() + "]"
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, headingStyle.Render("Summary"))
	fmt.Fprintln(w, renderSummary(summaryRows(report)))
	fmt.Fprintf(w, "Status: %s\n", report.Status)
	return nil
}

func summaryRows(report *models.RunReport) []summaryRow {
	stats := report.Stats
	rows := []summaryRow{
		{"Files", fmt.Sprintf("%d", stats.Total)},
		{"Copied", fmt.Sprintf("%d", stats.Copied)},
		{"Copied with errors", fmt.Sprintf("%d", stats.CopiedWithError)},
		{"Identical, skipped", fmt.Sprintf("%d", stats.SkippedIdentical)},
		{"Different, skipped", fmt.Sprintf("%d", stats.SkippedConflict)},
		{"Not copied", fmt.Sprintf("%d", stats.Failed)},
		{"Data copied", formatBytes(stats.BytesCopied)},
		{"Elapsed", formatDuration(report.Duration)},
	}

	if stats.Total > 0 {
		rows = append(rows, summaryRow{"Average per file", formatDuration(report.Duration / time.Duration(stats.Total))})
	}
	if report.Duration.Seconds() > 0 && stats.BytesCopied > 0 {
		avgSpeed := float64(stats.BytesCopied) / report.Duration.Seconds()
		rows = append(rows, summaryRow{"Average speed", formatBytes(int64(avgSpeed)) + "/s"})
	}
	return rows
}

func renderSummary(rows []summaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}
	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value)))
	}
	lines = append(lines, hline)

	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
