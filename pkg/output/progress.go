package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/copypix/pkg/models"
)

const progressTemplate = `{{string . "prefix"}}{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{etime . }}`

// refreshRate is the progress bar redraw interval
const refreshRate = 200 * time.Millisecond

// ProgressFormatter shows a progress bar on terminals. Files needing
// attention are listed in the summary once the bar is finished. On
// anything but a terminal it prints plain lines like HumanFormatter.
type ProgressFormatter struct {
	writer       io.Writer
	printSkipped bool

	mu       sync.Mutex
	bar      *pb.ProgressBar
	fallback *HumanFormatter
}

// NewProgressFormatter creates a new progress bar formatter writing to w
// (stdout if nil)
func NewProgressFormatter(w io.Writer, printSkipped bool) *ProgressFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &ProgressFormatter{writer: w, printSkipped: printSkipped}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer != nil {
		f.writer = writer
	}

	width, ok := terminalWidth(f.writer)
	if !ok || totalFiles == 0 {
		f.fallback = NewHumanFormatter(f.writer, f.printSkipped)
		return f.fallback.Start(nil, totalFiles)
	}

	f.bar = pb.ProgressBarTemplate(progressTemplate).New(totalFiles)
	f.bar.SetWriter(f.writer)
	f.bar.SetMaxWidth(width)
	f.bar.SetRefreshRate(refreshRate)
	f.bar.Set(pb.Terminal, true)
	f.bar.Start()
	return nil
}

// Progress advances the bar by one file
func (f *ProgressFormatter) Progress(event models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fallback != nil {
		return f.fallback.Progress(event)
	}
	if f.bar == nil {
		return nil
	}

	f.bar.Set("prefix", fmt.Sprintf("%s ", truncateName(event.Name, 30)))
	f.bar.Increment()
	return nil
}

// Complete finishes the bar and displays the summary
func (f *ProgressFormatter) Complete(report *models.RunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fallback != nil {
		return f.fallback.Complete(report)
	}
	if f.bar != nil {
		f.bar.Set("prefix", "")
		f.bar.Finish()
		f.bar = nil
	}
	return writeSummary(f.writer, report)
}

// Error stops the bar and reports the error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	fmt.Fprintf(f.writer, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

// terminalWidth returns the width of w if it is a terminal
func terminalWidth(w io.Writer) (int, bool) {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 120, true
	}
	return width, true
}

func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return "..." + string(runes[len(runes)-limit+3:])
}
