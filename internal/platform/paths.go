package platform

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sdejongh/copypix/pkg/models"
)

// NormalizePath cleans a path for the current platform
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// Resolve returns the absolute, symlink-free form of path. Components that
// do not exist yet are kept as given.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(NormalizePath(path))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// CheckDistinct rejects a source and destination that are the same
// directory or nested inside one another. Errors wrap models.ErrInvalidInput.
func CheckDistinct(source, dest string) error {
	if source == "" || dest == "" {
		return models.InvalidInputf("source and destination are required")
	}

	sourceAbs, err := Resolve(source)
	if err != nil {
		return models.InvalidInputf("cannot resolve source path %s: %v", source, err)
	}
	destAbs, err := Resolve(dest)
	if err != nil {
		return models.InvalidInputf("cannot resolve destination path %s: %v", dest, err)
	}

	if samePath(sourceAbs, destAbs) {
		return models.InvalidInputf("source and destination cannot be the same: %s", sourceAbs)
	}
	if isWithin(destAbs, sourceAbs) {
		return models.InvalidInputf("destination cannot be inside source directory")
	}
	if isWithin(sourceAbs, destAbs) {
		return models.InvalidInputf("source cannot be inside destination directory")
	}

	return nil
}

// isWithin reports whether path lies strictly below dir
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
