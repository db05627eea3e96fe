package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds configuration for the stream logger
type Config struct {
	// Path is the log file path. Empty logs to Writer.
	Path string
	// Writer receives log lines when Path is empty (stderr if nil)
	Writer io.Writer
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
	// Fs holds the log file (the OS file system if nil)
	Fs afero.Fs
}

// sink is the destination shared by a logger and the loggers derived from it
type sink struct {
	mu          sync.Mutex
	config      Config
	file        afero.File
	writer      io.Writer
	currentSize int64
}

// StreamLogger implements Logger, writing to a file or a stream
type StreamLogger struct {
	sink   *sink
	fields Fields
}

// New creates a logger. With an empty Path it writes to Writer and never
// rotates.
func New(config Config) (*StreamLogger, error) {
	s := &sink{config: config}

	if config.Path == "" {
		s.writer = config.Writer
		if s.writer == nil {
			s.writer = os.Stderr
		}
		return &StreamLogger{sink: s}, nil
	}

	if s.config.Fs == nil {
		s.config.Fs = afero.NewOsFs()
	}
	fsys := s.config.Fs

	// Ensure directory exists
	if err := fsys.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := fsys.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	s.file = file
	s.writer = file
	s.currentSize = info.Size()
	return &StreamLogger{sink: s}, nil
}

// Debug logs a debug message
func (l *StreamLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *StreamLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *StreamLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *StreamLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields
func (l *StreamLogger) WithFields(fields Fields) Logger {
	return &StreamLogger{sink: l.sink, fields: mergeFields(l.fields, fields)}
}

// Close flushes and closes the log file. Stream output is left open.
func (l *StreamLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil
		l.sink.writer = io.Discard
		return err
	}
	return nil
}

func (l *StreamLogger) log(level Level, msg string, err error, fields Fields) {
	s := l.sink
	if level < s.config.Level {
		return
	}

	var line []byte
	if s.config.Format == FormatJSON {
		data, jsonErr := formatJSON(level, msg, err, mergeFields(l.fields, fields))
		if jsonErr != nil {
			return
		}
		line = data
	} else {
		line = formatText(level, msg, err, mergeFields(l.fields, fields))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check rotation before writing
	if s.file != nil && s.config.MaxSize > 0 && s.currentSize >= s.config.MaxSize {
		s.rotate()
	}

	n, _ := s.writer.Write(line)
	s.currentSize += int64(n)
}

func mergeFields(base, extra Fields) Fields {
	merged := make(Fields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// formatJSON formats a log entry as JSON
func formatJSON(level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level.String(),
		"message":   msg,
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}

	return append(data, '\n'), nil
}

// formatText formats a log entry as plain text with fields in key order
func formatText(level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&b, " [%s] %s", level.String(), msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

// rotate rotates the log file. Callers hold s.mu.
func (s *sink) rotate() {
	fsys := s.config.Fs
	path := s.config.Path

	s.file.Close()

	// Rotate existing backups
	for i := s.config.MaxBackups - 1; i >= 1; i-- {
		fsys.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}

	// Rename current to .1
	fsys.Rename(path, path+".1")

	// Remove oldest if exceeds max backups
	if s.config.MaxBackups > 0 {
		fsys.Remove(fmt.Sprintf("%s.%d", path, s.config.MaxBackups+1))
	}

	file, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		s.file = nil
		s.writer = io.Discard
		return
	}

	s.file = file
	s.writer = file
	s.currentSize = 0
}
