package output

import (
	"io"

	"github.com/sdejongh/copypix/pkg/models"
)

// Formatter defines the interface for output formatting.
// Implementations include human-readable, progress bar and JSON formatters.
type Formatter interface {
	// Start initializes the formatter for a new run. A nil writer keeps
	// the writer the formatter was created with.
	Start(writer io.Writer, totalFiles int) error

	// Progress reports one reconciled candidate
	Progress(event models.Event) error

	// Complete finalizes output and displays summary
	Complete(report *models.RunReport) error

	// Error reports an error that stopped the run
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
