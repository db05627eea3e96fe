package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sdejongh/copypix/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Copy        CopyConfig        `yaml:"copy"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CopyConfig holds the candidate selection and reconciliation settings
type CopyConfig struct {
	Extensions      []string               `yaml:"extensions"`
	Exclude         []string               `yaml:"exclude"`
	OverwritePolicy models.OverwritePolicy `yaml:"overwrite_policy"`
	// TreatEmptyDestAsOverwritable replaces zero-byte destination files
	// even when overwrite_policy is "never"
	TreatEmptyDestAsOverwritable bool                 `yaml:"treat_empty_dest_as_overwritable"`
	Verify                       bool                 `yaml:"verify"`
	PrintSkipped                 bool                 `yaml:"print_skipped"`
	Hash                         models.HashAlgorithm `yaml:"hash"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int   `yaml:"max_workers"`
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"` // bytes/s, 0 = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Copy: CopyConfig{
			Extensions:      append([]string(nil), models.DefaultExtensions...),
			Exclude:         []string{},
			OverwritePolicy: models.NeverOverwrite,
			Verify:          true,
			Hash:            models.HashSHA256,
		},
		Performance: PerformanceConfig{
			MaxWorkers: 1,
			BufferSize: 4096,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
		},
	}
}

// Normalize lower-cases extensions and ensures their leading dot
func (c *Config) Normalize() {
	c.Copy.Extensions = models.NormalizeExtensions(c.Copy.Extensions)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(models.NormalizeExtensions(c.Copy.Extensions)) == 0 {
		return &models.ValidationError{
			Field:   "copy.extensions",
			Message: "at least one extension is required",
		}
	}

	for _, pattern := range c.Copy.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return &models.ValidationError{
				Field:   "copy.exclude",
				Message: fmt.Sprintf("invalid pattern %q", pattern),
			}
		}
	}

	switch c.Copy.OverwritePolicy {
	case models.NeverOverwrite, models.AlwaysOverwriteConflicts:
	default:
		return &models.ValidationError{
			Field:   "copy.overwrite_policy",
			Message: "must be 'never' or 'always'",
		}
	}

	switch c.Copy.Hash {
	case models.HashSHA256, models.HashMD5:
	default:
		return &models.ValidationError{
			Field:   "copy.hash",
			Message: "must be 'sha256' or 'md5'",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "cannot be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// Operation builds the copy operation for one run
func (c *Config) Operation(sourcePath, destPath string) *models.CopyOperation {
	return &models.CopyOperation{
		SourcePath:                   sourcePath,
		DestPath:                     destPath,
		Extensions:                   models.NormalizeExtensions(c.Copy.Extensions),
		ExcludePatterns:              c.Copy.Exclude,
		OverwritePolicy:              c.Copy.OverwritePolicy,
		TreatEmptyDestAsOverwritable: c.Copy.TreatEmptyDestAsOverwritable,
		VerifyCopy:                   c.Copy.Verify,
		HashAlgorithm:                c.Copy.Hash,
		MaxWorkers:                   c.Performance.MaxWorkers,
		BandwidthLimit:               c.Performance.BandwidthLimit,
		BufferSize:                   c.Performance.BufferSize,
	}
}
