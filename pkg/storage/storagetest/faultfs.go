// Package storagetest provides fault-injecting file systems for tests.
package storagetest

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// ErrInjected is returned by every injected failure
var ErrInjected = errors.New("injected failure")

// FaultFs wraps an afero.Fs and fails or corrupts selected operations.
// Paths are matched after filepath.Clean.
type FaultFs struct {
	afero.Fs

	mu            sync.Mutex
	failOpen      map[string]bool
	failCreate    map[string]bool
	failRemove    map[string]bool
	failWriteAt   map[string]int64
	corruptWrites map[string]bool
	removeCalls   map[string]int
}

// NewFaultFs wraps base
func NewFaultFs(base afero.Fs) *FaultFs {
	return &FaultFs{
		Fs:            base,
		failOpen:      make(map[string]bool),
		failCreate:    make(map[string]bool),
		failRemove:    make(map[string]bool),
		failWriteAt:   make(map[string]int64),
		corruptWrites: make(map[string]bool),
		removeCalls:   make(map[string]int),
	}
}

// FailOpen makes opening path for reading fail
func (f *FaultFs) FailOpen(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOpen[filepath.Clean(path)] = true
}

// FailCreate makes opening path for writing fail
func (f *FaultFs) FailCreate(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCreate[filepath.Clean(path)] = true
}

// FailRemove makes removing path fail
func (f *FaultFs) FailRemove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRemove[filepath.Clean(path)] = true
}

// FailWriteAfter makes writes to path fail once more than n bytes were written.
// The first n bytes reach the file.
func (f *FaultFs) FailWriteAfter(path string, n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWriteAt[filepath.Clean(path)] = n
}

// CorruptWrites flips the first byte of every write to path
func (f *FaultFs) CorruptWrites(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corruptWrites[filepath.Clean(path)] = true
}

// RemoveCalls returns how many times Remove was called for path
func (f *FaultFs) RemoveCalls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeCalls[filepath.Clean(path)]
}

// Open implements afero.Fs
func (f *FaultFs) Open(name string) (afero.File, error) {
	f.mu.Lock()
	fail := f.failOpen[filepath.Clean(name)]
	f.mu.Unlock()
	if fail {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	return f.Fs.Open(name)
}

// Create implements afero.Fs
func (f *FaultFs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// OpenFile implements afero.Fs
func (f *FaultFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	key := filepath.Clean(name)
	writing := flag&(os.O_WRONLY|os.O_RDWR) != 0

	f.mu.Lock()
	failOpen := f.failOpen[key] && !writing
	failCreate := f.failCreate[key] && writing
	limit, limited := f.failWriteAt[key]
	corrupt := f.corruptWrites[key]
	f.mu.Unlock()

	if failOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	if failCreate {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}

	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil || !writing || (!limited && !corrupt) {
		return file, err
	}

	return &faultFile{File: file, limit: limit, limited: limited, corrupt: corrupt}, nil
}

// Remove implements afero.Fs
func (f *FaultFs) Remove(name string) error {
	key := filepath.Clean(name)

	f.mu.Lock()
	f.removeCalls[key]++
	fail := f.failRemove[key]
	f.mu.Unlock()

	if fail {
		return &os.PathError{Op: "remove", Path: name, Err: ErrInjected}
	}
	return f.Fs.Remove(name)
}

type faultFile struct {
	afero.File
	written int64
	limit   int64
	limited bool
	corrupt bool
}

func (f *faultFile) Write(p []byte) (int, error) {
	if f.corrupt && len(p) > 0 {
		bad := make([]byte, len(p))
		copy(bad, p)
		bad[0] ^= 0xFF
		p = bad
	}

	if f.limited && f.written+int64(len(p)) > f.limit {
		allowed := f.limit - f.written
		if allowed > 0 {
			n, _ := f.File.Write(p[:allowed])
			f.written += int64(n)
			return n, ErrInjected
		}
		return 0, ErrInjected
	}

	n, err := f.File.Write(p)
	f.written += int64(n)
	return n, err
}
