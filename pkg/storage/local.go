package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local is a storage backend over an afero file system
type Local struct {
	fs afero.Fs
}

// NewLocal creates a backend over the operating system file system
func NewLocal() *Local {
	return &Local{fs: afero.NewOsFs()}
}

// NewMemory creates a backend over an in-memory file system
func NewMemory() *Local {
	return &Local{fs: afero.NewMemMapFs()}
}

// New creates a backend over any afero file system
func New(fsys afero.Fs) *Local {
	return &Local{fs: fsys}
}

// Fs returns the underlying file system
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// ReadDir lists a single directory level
func (l *Local) ReadDir(ctx context.Context, dir string) ([]FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	entries := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		p := filepath.Join(dir, info.Name())

		// Follow symbolic links so a link to a regular file counts as one
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := l.fs.Stat(p)
			if err != nil {
				entries = append(entries, FileInfo{Path: p, Name: info.Name(), ModTime: info.ModTime()})
				continue
			}
			info = target
		}

		entries = append(entries, toFileInfo(p, info))
	}

	return entries, nil
}

// Open opens a file for reading
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Create creates or truncates a file for writing
func (l *Local) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	file, err := l.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// Remove deletes a single file
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := l.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	fi := toFileInfo(path, info)
	return &fi, nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := l.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Close releases resources (no-op for local file systems)
func (l *Local) Close() error {
	return nil
}

// IsNotExist reports whether err means the path does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:      path,
		Name:      info.Name(),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsRegular: info.Mode().IsRegular(),
	}
}
