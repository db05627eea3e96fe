package models

import (
	"time"
)

// RunReport represents the results of a batch run
type RunReport struct {
	// Operation details
	OperationID string
	SourcePath  string
	DestPath    string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats RunStatistics

	// Candidates in reconciliation order, each with its terminal outcome
	Files []*CandidateFile

	// Overall status
	Status RunStatus
}

// Attention returns the files that need manual attention, in run order
func (r *RunReport) Attention() []*CandidateFile {
	var out []*CandidateFile
	for _, f := range r.Files {
		if f.Outcome().NeedsAttention() {
			out = append(out, f)
		}
	}
	return out
}

// FilesWith returns the files that ended with the given outcome
func (r *RunReport) FilesWith(outcome Outcome) []*CandidateFile {
	var out []*CandidateFile
	for _, f := range r.Files {
		if f.Outcome() == outcome {
			out = append(out, f)
		}
	}
	return out
}

// RunStatistics is the aggregate tally of candidate outcomes.
// It is derived after a batch and never persisted.
type RunStatistics struct {
	Total            int
	Copied           int
	CopiedWithError  int
	SkippedIdentical int
	SkippedConflict  int
	Failed           int

	BytesCopied int64
}

// Add folds one resolved candidate into the statistics
func (s *RunStatistics) Add(c *CandidateFile) {
	s.Total++
	switch c.Outcome() {
	case OutcomeCopied:
		s.Copied++
		s.BytesCopied += c.BytesCopied()
	case OutcomeCopiedWithError:
		s.CopiedWithError++
		s.BytesCopied += c.BytesCopied()
	case OutcomeSkippedIdentical:
		s.SkippedIdentical++
	case OutcomeSkippedConflict:
		s.SkippedConflict++
	case OutcomeFailed:
		s.Failed++
	}
}

// Errors returns the number of files that ended in an error state
func (s RunStatistics) Errors() int {
	return s.Failed + s.CopiedWithError
}

// ComputeStatistics scans candidate outcomes into a fresh tally
func ComputeStatistics(files []*CandidateFile) RunStatistics {
	var stats RunStatistics
	for _, f := range files {
		stats.Add(f)
	}
	return stats
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates every candidate was copied or already identical
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates the run completed with conflicts or file errors
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates the run could not start (invalid input)
	StatusFailed RunStatus = "failed"
	// StatusCancelled indicates the run was aborted between candidates
	StatusCancelled RunStatus = "cancelled"
)

// ExitCode returns the process exit code for the run status.
// A completed run exits 0 even when individual files failed.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusPartial:
		return 0
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// StatusFor derives the run status from completed statistics
func StatusFor(stats RunStatistics) RunStatus {
	if stats.Errors() > 0 || stats.SkippedConflict > 0 {
		return StatusPartial
	}
	return StatusSuccess
}
