package logging

import (
	"context"
	"strings"
)

// Level represents log severity
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the upper-case level name used in log lines
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name case-insensitively; unknown names mean info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns the level name
func LevelString(level Level) string {
	return level.String()
}

// Fields holds structured key/value pairs attached to a log line
type Fields map[string]interface{}

// Logger is the structured logger used by the engine and the CLI.
// StreamLogger writes text or JSON lines; NullLogger discards everything.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)
	// Error logs msg with err under the "error" key
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger adding fields to every line
	WithFields(fields Fields) Logger

	// Close flushes and releases the output
	Close() error
}

var (
	_ Logger = (*StreamLogger)(nil)
	_ Logger = (*NullLogger)(nil)
)

// NullLogger discards everything; used when logging is disabled
type NullLogger struct{}

// NewNullLogger creates a null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(ctx context.Context, msg string, fields Fields)            {}
func (l *NullLogger) Info(ctx context.Context, msg string, fields Fields)             {}
func (l *NullLogger) Warn(ctx context.Context, msg string, fields Fields)             {}
func (l *NullLogger) Error(ctx context.Context, msg string, err error, fields Fields) {}

func (l *NullLogger) WithFields(fields Fields) Logger {
	return l
}

func (l *NullLogger) Close() error {
	return nil
}
