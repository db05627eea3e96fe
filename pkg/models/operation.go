package models

import (
	"strings"
	"time"
)

// OverwritePolicy defines what happens when a different file already exists
// at the destination
type OverwritePolicy string

const (
	// NeverOverwrite keeps the destination file and reports a conflict
	NeverOverwrite OverwritePolicy = "never"
	// AlwaysOverwriteConflicts deletes the destination file and copies the source
	AlwaysOverwriteConflicts OverwritePolicy = "always"
)

// HashAlgorithm selects the content digest used for comparison and verification
type HashAlgorithm string

const (
	// HashSHA256 uses SHA-256
	HashSHA256 HashAlgorithm = "sha256"
	// HashMD5 uses MD5 (faster, guards against accidental corruption only)
	HashMD5 HashAlgorithm = "md5"
)

// DefaultExtensions are the file extensions copied when none are configured
var DefaultExtensions = []string{".cr2", ".jpg"}

// CopyOperation describes one batch run
type CopyOperation struct {
	ID              string
	SourcePath      string
	DestPath        string
	Extensions      []string
	ExcludePatterns []string
	OverwritePolicy OverwritePolicy
	// TreatEmptyDestAsOverwritable replaces zero-byte destination files
	// regardless of OverwritePolicy
	TreatEmptyDestAsOverwritable bool
	VerifyCopy                   bool
	HashAlgorithm                HashAlgorithm
	MaxWorkers                   int
	BandwidthLimit               int64 // bytes per second, 0 = unlimited
	BufferSize                   int
	CreatedAt                    time.Time
}

// Validate checks if the operation configuration is valid
func (op *CopyOperation) Validate() error {
	if op.SourcePath == "" {
		return &ValidationError{Field: "SourcePath", Message: "source path is required"}
	}
	if op.DestPath == "" {
		return &ValidationError{Field: "DestPath", Message: "destination path is required"}
	}
	if len(op.Extensions) == 0 {
		return &ValidationError{Field: "Extensions", Message: "at least one extension is required"}
	}
	switch op.OverwritePolicy {
	case NeverOverwrite, AlwaysOverwriteConflicts:
	default:
		return &ValidationError{Field: "OverwritePolicy", Message: "must be 'never' or 'always'"}
	}
	switch op.HashAlgorithm {
	case HashSHA256, HashMD5:
	default:
		return &ValidationError{Field: "HashAlgorithm", Message: "must be 'sha256' or 'md5'"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	if op.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	return nil
}

// NormalizeExtensions lower-cases extensions and ensures a leading dot.
// Empty entries and duplicates are dropped.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
