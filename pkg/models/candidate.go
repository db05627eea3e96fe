package models

import (
	"path/filepath"
	"time"
)

// Outcome is the terminal state of a candidate file after reconciliation.
// Exactly one outcome holds per candidate.
type Outcome string

const (
	// OutcomePending marks a candidate that has not been reconciled yet
	OutcomePending Outcome = ""
	// OutcomeCopied indicates the file was copied (and verified, if enabled)
	OutcomeCopied Outcome = "copied"
	// OutcomeCopiedWithError indicates bytes were written but verification failed
	OutcomeCopiedWithError Outcome = "copied_with_error"
	// OutcomeSkippedIdentical indicates the destination already holds the same content
	OutcomeSkippedIdentical Outcome = "skipped_identical"
	// OutcomeSkippedConflict indicates the destination differs and may not be replaced
	OutcomeSkippedConflict Outcome = "skipped_conflict"
	// OutcomeFailed indicates the copy could not be attempted or completed
	OutcomeFailed Outcome = "failed"
)

// NeedsAttention reports whether the user has to look at the file manually.
func (o Outcome) NeedsAttention() bool {
	switch o {
	case OutcomeCopiedWithError, OutcomeSkippedConflict, OutcomeFailed:
		return true
	default:
		return false
	}
}

// Label returns a short human-readable label
func (o Outcome) Label() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeCopiedWithError:
		return "copied with errors"
	case OutcomeSkippedIdentical:
		return "identical, skipped"
	case OutcomeSkippedConflict:
		return "different file exists, skipped"
	case OutcomeFailed:
		return "not copied"
	default:
		return "pending"
	}
}

// CandidateFile is one source directory entry considered for transfer.
// Its outcome is set once by the reconciliation policy and never changes.
type CandidateFile struct {
	// Name is the file name only, without directory
	Name      string
	SourceDir string
	DestDir   string
	// Size is the source size observed at scan time
	Size int64

	outcome     Outcome
	err         error
	cleanupErr  error
	bytesCopied int64
	duration    time.Duration
}

// NewCandidateFile creates a pending candidate
func NewCandidateFile(name, sourceDir, destDir string, size int64) *CandidateFile {
	return &CandidateFile{
		Name:      name,
		SourceDir: sourceDir,
		DestDir:   destDir,
		Size:      size,
	}
}

// SourcePath returns the full source path
func (c *CandidateFile) SourcePath() string {
	return filepath.Join(c.SourceDir, c.Name)
}

// DestPath returns the full destination path
func (c *CandidateFile) DestPath() string {
	return filepath.Join(c.DestDir, c.Name)
}

// Resolve sets the terminal outcome. It returns false and changes nothing
// if the candidate was already resolved.
func (c *CandidateFile) Resolve(outcome Outcome, err error) bool {
	if c.outcome != OutcomePending || outcome == OutcomePending {
		return false
	}
	c.outcome = outcome
	c.err = err
	return true
}

// SetTransfer records the details of a copy attempt
func (c *CandidateFile) SetTransfer(bytesCopied int64, cleanupErr error) {
	c.bytesCopied = bytesCopied
	c.cleanupErr = cleanupErr
}

// SetDuration records the time spent reconciling the file
func (c *CandidateFile) SetDuration(d time.Duration) {
	c.duration = d
}

// Outcome returns the terminal outcome (OutcomePending before reconciliation)
func (c *CandidateFile) Outcome() Outcome {
	return c.outcome
}

// Err returns the error behind a failed or partially failed outcome
func (c *CandidateFile) Err() error {
	return c.err
}

// ErrorDetail returns the error text, or "" when there is none
func (c *CandidateFile) ErrorDetail() string {
	if c.err == nil {
		return ""
	}
	return c.err.Error()
}

// CleanupErr returns the error from removing a partial destination, if any
func (c *CandidateFile) CleanupErr() error {
	return c.cleanupErr
}

// BytesCopied returns the number of bytes written to the destination
func (c *CandidateFile) BytesCopied() int64 {
	return c.bytesCopied
}

// Duration returns the time spent reconciling the file
func (c *CandidateFile) Duration() time.Duration {
	return c.duration
}
