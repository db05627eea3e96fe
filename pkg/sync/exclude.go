package sync

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sdejongh/copypix/pkg/models"
)

// Filter selects candidate files from a directory listing by extension
// and exclude patterns
type Filter struct {
	extensions map[string]struct{}
	exclude    []string
}

// NewFilter creates a filter. Extensions are normalized to lowercase with a
// leading dot; an empty list selects the default image extensions.
func NewFilter(extensions, exclude []string) *Filter {
	if len(extensions) == 0 {
		extensions = models.DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range models.NormalizeExtensions(extensions) {
		set[ext] = struct{}{}
	}
	return &Filter{extensions: set, exclude: exclude}
}

// Match reports whether name is a candidate: its extension (compared
// case-insensitively) is selected and no exclude pattern matches it.
// Only the final extension counts, so "d.JPG.txt" does not match ".jpg".
func (f *Filter) Match(name string) bool {
	ext := filepath.Ext(name)
	// A dotfile like ".jpg" has a stem but no extension
	if ext == "" || ext == name {
		return false
	}
	if _, ok := f.extensions[strings.ToLower(ext)]; !ok {
		return false
	}
	return !shouldExclude(name, f.exclude)
}

// shouldExclude checks if a file name matches any exclude pattern.
// Patterns use doublestar syntax: *.tmp, IMG_00??.jpg, {a,b}*.cr2
func shouldExclude(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// ValidatePatterns returns an error for the first malformed pattern
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return models.InvalidInputf("invalid exclude pattern %q", pattern)
		}
	}
	return nil
}
