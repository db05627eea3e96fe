package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/copypix/pkg/models"
)

// JSONFormatter writes the final report as a single JSON document for
// automation and scripting
type JSONFormatter struct {
	writer     io.Writer
	totalFiles int
	startTime  time.Time
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID string         `json:"operation_id"`
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
	Status      string         `json:"status"`
	Duration    string         `json:"duration"`
	DurationMs  int64          `json:"duration_ms"`
	Stats       JSONStatsData  `json:"stats"`
	Files       []JSONFileData `json:"files"`
	Error       string         `json:"error,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	Total            int    `json:"total"`
	Copied           int    `json:"copied"`
	CopiedWithError  int    `json:"copied_with_error"`
	SkippedIdentical int    `json:"skipped_identical"`
	SkippedConflict  int    `json:"skipped_conflict"`
	Failed           int    `json:"failed"`
	BytesCopied      int64  `json:"bytes_copied"`
	AverageSpeed     int64  `json:"average_speed_bytes_per_sec,omitempty"`
	AverageSpeedStr  string `json:"average_speed,omitempty"`
}

// JSONFileData represents one candidate file
type JSONFileData struct {
	Name         string `json:"name"`
	Outcome      string `json:"outcome"`
	Bytes        int64  `json:"bytes,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	Error        string `json:"error,omitempty"`
	FailedOp     string `json:"failed_op,omitempty"`
	CleanupError string `json:"cleanup_error,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter writing to w (stdout if nil)
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer != nil {
		f.writer = writer
	}
	f.totalFiles = totalFiles
	f.startTime = time.Now()
	return nil
}

// Progress is silent to keep the output a single parseable document
func (f *JSONFormatter) Progress(event models.Event) error {
	return nil
}

// Complete writes the report as JSON
func (f *JSONFormatter) Complete(report *models.RunReport) error {
	return f.encode(buildJSONReport(report))
}

// Error writes a failed report carrying the error
func (f *JSONFormatter) Error(err error) error {
	return f.encode(JSONReportData{
		Status: string(models.StatusFailed),
		Files:  []JSONFileData{},
		Error:  err.Error(),
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) encode(data JSONReportData) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func buildJSONReport(report *models.RunReport) JSONReportData {
	stats := report.Stats

	var avgSpeed int64
	var avgSpeedStr string
	if report.Duration.Seconds() > 0 && stats.BytesCopied > 0 {
		avgSpeed = int64(float64(stats.BytesCopied) / report.Duration.Seconds())
		avgSpeedStr = formatBytes(avgSpeed) + "/s"
	}

	files := make([]JSONFileData, 0, len(report.Files))
	for _, file := range report.Files {
		data := JSONFileData{
			Name:       file.Name,
			Outcome:    string(file.Outcome()),
			Bytes:      file.BytesCopied(),
			DurationMs: file.Duration().Milliseconds(),
			Error:      file.ErrorDetail(),
			FailedOp:   string(models.FailedOp(file.Err())),
		}
		if file.CleanupErr() != nil {
			data.CleanupError = file.CleanupErr().Error()
		}
		files = append(files, data)
	}

	return JSONReportData{
		OperationID: report.OperationID,
		Source:      report.SourcePath,
		Destination: report.DestPath,
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			Total:            stats.Total,
			Copied:           stats.Copied,
			CopiedWithError:  stats.CopiedWithError,
			SkippedIdentical: stats.SkippedIdentical,
			SkippedConflict:  stats.SkippedConflict,
			Failed:           stats.Failed,
			BytesCopied:      stats.BytesCopied,
			AverageSpeed:     avgSpeed,
			AverageSpeedStr:  avgSpeedStr,
		},
		Files: files,
	}
}
