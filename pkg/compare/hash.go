package compare

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/storage"
)

// DefaultChunkSize is the read size used when hashing
const DefaultChunkSize = 4096

// ReaderWrapper wraps readers opened for hashing (e.g., for rate limiting)
type ReaderWrapper func(io.ReadCloser) io.ReadCloser

// Hasher computes content digests of files, streamed in fixed-size chunks
// so memory use does not depend on file size
type Hasher struct {
	backend       storage.Backend
	algorithm     models.HashAlgorithm
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewHasher creates a hasher reading through backend.
// An unknown algorithm falls back to SHA-256.
func NewHasher(backend storage.Backend, algorithm models.HashAlgorithm, chunkSize int) *Hasher {
	if chunkSize < 1024 {
		chunkSize = DefaultChunkSize
	}
	if algorithm != models.HashMD5 {
		algorithm = models.HashSHA256
	}
	return &Hasher{
		backend:   backend,
		algorithm: algorithm,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, chunkSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (h *Hasher) SetReaderWrapper(wrapper ReaderWrapper) {
	h.readerWrapper = wrapper
}

// Algorithm returns the digest algorithm in use
func (h *Hasher) Algorithm() models.HashAlgorithm {
	return h.algorithm
}

// Digest returns the hex digest of the file at path. Byte-identical content
// always yields equal digests. Open and read failures are returned as
// *models.FileError with Op OpHash.
func (h *Hasher) Digest(ctx context.Context, path string) (string, error) {
	reader, err := h.backend.Open(ctx, path)
	if err != nil {
		return "", &models.FileError{Op: models.OpHash, Path: path, Err: err}
	}
	defer reader.Close()

	if h.readerWrapper != nil {
		reader = h.readerWrapper(reader)
	}

	hasher := h.newHash()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &models.FileError{Op: models.OpHash, Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *Hasher) newHash() hash.Hash {
	if h.algorithm == models.HashMD5 {
		return md5.New()
	}
	return sha256.New()
}
