package sync

import (
	"context"
	"fmt"
	"io"

	"github.com/sdejongh/copypix/pkg/compare"
	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/ratelimit"
	"github.com/sdejongh/copypix/pkg/storage"
)

// CopyResult is the logical result of one verified copy
type CopyResult struct {
	// Copied is set once every source byte reached the destination
	Copied bool
	// Mismatch is set when post-copy verification found different digests
	Mismatch     bool
	BytesWritten int64
	// Err is a *models.FileError for failures, or wraps
	// models.ErrVerificationMismatch / a hash error after a copy
	Err error
	// CleanupErr is set when a partial destination could not be removed
	CleanupErr error
}

// Outcome maps the copy result to a candidate outcome
func (r CopyResult) Outcome() models.Outcome {
	switch {
	case !r.Copied:
		return models.OutcomeFailed
	case r.Err != nil:
		return models.OutcomeCopiedWithError
	default:
		return models.OutcomeCopied
	}
}

// Copier performs a verified byte copy of one file
type Copier interface {
	CopyVerified(ctx context.Context, sourcePath, destPath string, verify bool) CopyResult
}

// CopyEngine copies files through a storage backend and verifies them by hash
type CopyEngine struct {
	backend    storage.Backend
	hasher     *compare.Hasher
	bufferSize int
	limiter    *ratelimit.Limiter
}

// NewCopyEngine creates a copy engine. limiter may be nil for no bandwidth limit.
func NewCopyEngine(backend storage.Backend, hasher *compare.Hasher, bufferSize int, limiter *ratelimit.Limiter) *CopyEngine {
	if bufferSize < 1024 {
		bufferSize = compare.DefaultChunkSize
	}
	return &CopyEngine{
		backend:    backend,
		hasher:     hasher,
		bufferSize: bufferSize,
		limiter:    limiter,
	}
}

// CopyVerified copies sourcePath to destPath, truncating any existing
// destination. A failed write removes the partial destination; if that
// removal fails too, CleanupErr is set. Verification failure leaves the
// written bytes in place and is reported through Mismatch and Err.
func (e *CopyEngine) CopyVerified(ctx context.Context, sourcePath, destPath string, verify bool) CopyResult {
	reader, err := e.backend.Open(ctx, sourcePath)
	if err != nil {
		return CopyResult{Err: &models.FileError{Op: models.OpOpenSource, Path: sourcePath, Err: err}}
	}

	writer, err := e.backend.Create(ctx, destPath)
	if err != nil {
		reader.Close()
		return CopyResult{Err: &models.FileError{Op: models.OpOpenDest, Path: destPath, Err: err}}
	}

	buf := make([]byte, e.bufferSize)
	written, err := io.CopyBuffer(writer, ratelimit.NewReader(ctx, reader, e.limiter), buf)
	reader.Close()
	if closeErr := writer.Close(); err == nil && closeErr != nil {
		err = closeErr
	}

	if err != nil {
		result := CopyResult{
			BytesWritten: written,
			Err:          &models.FileError{Op: models.OpWrite, Path: destPath, Err: err},
		}
		if rmErr := e.backend.Remove(ctx, destPath); rmErr != nil && !storage.IsNotExist(rmErr) {
			result.CleanupErr = &models.CleanupError{Path: destPath, Err: rmErr}
		}
		return result
	}

	result := CopyResult{Copied: true, BytesWritten: written}
	if !verify {
		return result
	}

	same, err := compare.SameContent(ctx, e.hasher, sourcePath, destPath)
	switch {
	case err != nil:
		result.Err = fmt.Errorf("verification failed: %w", err)
	case !same:
		result.Mismatch = true
		result.Err = fmt.Errorf("%w: %s", models.ErrVerificationMismatch, destPath)
	}
	return result
}
