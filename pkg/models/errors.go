package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks directory-level failures that abort a run before
	// any file is touched
	ErrInvalidInput = errors.New("invalid input")

	// ErrVerificationMismatch marks a copy whose destination hash differs from the source
	ErrVerificationMismatch = errors.New("verification mismatch")

	// ErrDeletion marks a failure to remove a conflicting destination file
	ErrDeletion = errors.New("cannot delete destination file")

	// ErrSourceMissing marks a candidate whose source vanished before reconciliation
	ErrSourceMissing = errors.New("source file does not exist")
)

// FileOp names the step of a per-file operation that failed
type FileOp string

const (
	OpOpenSource FileOp = "open-source"
	OpOpenDest   FileOp = "open-dest"
	OpWrite      FileOp = "write"
	OpStat       FileOp = "stat"
	OpHash       FileOp = "hash"
	OpDelete     FileOp = "delete"
)

// FileError is an I/O failure local to a single candidate file
type FileError struct {
	Op   FileOp
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrDeletion) match delete failures
func (e *FileError) Is(target error) bool {
	return target == ErrDeletion && e.Op == OpDelete
}

// CleanupError reports a partial destination that could not be removed
// after a failed copy. The file on disk is left truncated or partial.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("partial file left at %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// InvalidInputf wraps ErrInvalidInput with a formatted message
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// FailedOp returns the failing step of err, or "" if err is not a FileError
func FailedOp(err error) FileOp {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Op
	}
	return ""
}
