package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a directory entry
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	// IsRegular is false for directories, devices, sockets and dangling links
	IsRegular bool
}

// Backend defines the file system operations used by the copier.
// Paths are full paths; the backend is not rooted at a directory.
type Backend interface {
	// ReadDir returns the entries of a single directory level, sorted by name
	ReadDir(ctx context.Context, dir string) ([]FileInfo, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create creates a file for writing, truncating any existing content
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// Remove deletes a single file
	Remove(ctx context.Context, path string) error

	// Stat returns file metadata, following symbolic links
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
