package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/copypix/internal/platform"
	"github.com/sdejongh/copypix/pkg/config"
	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/ratelimit"
)

// loadConfig loads configuration from file or returns default
func loadConfig(global *GlobalFlags) (*config.Config, error) {
	if global.ConfigFile != "" {
		return config.LoadFromFile(global.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on the
// command line, then validates the result
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config, global *GlobalFlags, flags *CopyFlags) error {
	changed := cmd.Flags().Changed

	if changed("ext") {
		cfg.Copy.Extensions = flags.Extensions
	}
	if changed("exclude") {
		cfg.Copy.Exclude = flags.Exclude
	}
	if changed("overwrite") {
		cfg.Copy.OverwritePolicy = models.NeverOverwrite
		if flags.Overwrite {
			cfg.Copy.OverwritePolicy = models.AlwaysOverwriteConflicts
		}
	}
	if changed("overwrite-empty") {
		cfg.Copy.TreatEmptyDestAsOverwritable = flags.OverwriteEmpty
	}
	if changed("no-verify") {
		cfg.Copy.Verify = !flags.NoVerify
	}
	if changed("print-skipped") {
		cfg.Copy.PrintSkipped = flags.PrintSkipped
	}
	if changed("hash") {
		cfg.Copy.Hash = models.HashAlgorithm(flags.Hash)
	}
	if changed("parallel") {
		cfg.Performance.MaxWorkers = flags.Parallel
	}
	if changed("bandwidth") {
		limit, err := ratelimit.ParseBandwidth(flags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = limit
	}
	if changed("output") {
		cfg.Output.Format = flags.Output
	}

	if flags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = flags.LogFile
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.LogFormat
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.LogLevel
	}

	// Quiet wins over verbose
	if global.Verbose {
		cfg.Copy.PrintSkipped = true
		if !changed("log-level") {
			cfg.Logging.Level = "debug"
		}
	}
	if global.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
		cfg.Copy.PrintSkipped = false
	}

	switch flags.ReportFormat {
	case "human", "json":
	default:
		return fmt.Errorf("invalid report format: %s (valid: human, json)", flags.ReportFormat)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Normalize()
	return nil
}

// createCopyOperation creates the copy operation for source and dest.
// Same or nested directories are rejected as invalid input.
func createCopyOperation(cfg *config.Config, source, dest string) (*models.CopyOperation, error) {
	if err := platform.CheckDistinct(source, dest); err != nil {
		return nil, err
	}

	operation := cfg.Operation(platform.NormalizePath(source), platform.NormalizePath(dest))
	operation.ID = uuid.New().String()
	operation.CreatedAt = time.Now()

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
