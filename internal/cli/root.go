package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sdejongh/copypix/pkg/config"
	"github.com/sdejongh/copypix/pkg/logging"
	"github.com/sdejongh/copypix/pkg/models"
	"github.com/sdejongh/copypix/pkg/output"
	"github.com/sdejongh/copypix/pkg/storage"
	"github.com/sdejongh/copypix/pkg/sync"
)

// Exit codes for failures outside a run
const (
	ExitUsage = 1
)

// ExitError carries the process exit code of a finished command.
// Reported is set when the error was already shown to the user.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for an error returned by the
// root command. Errors that carry no code are usage errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// NewRootCommand creates the copypix command with its subcommands
func NewRootCommand() *cobra.Command {
	global := &GlobalFlags{}
	flags := &CopyFlags{}

	cmd := &cobra.Command{
		Use:   "copypix [flags] <source-folder> <destination-folder>",
		Short: "Copy camera images into an archive folder",
		Long: `copypix copies image files (.cr2 and .jpg by default) from a source folder
into a destination folder. Files already present with identical content are
skipped, files with different content are kept unless --overwrite is given,
and every copy is verified by hash.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, global, flags, args[0], args[1])
		},
	}

	addGlobalFlags(cmd, global)
	addCopyFlags(cmd, flags)

	cmd.AddCommand(NewConfigCommand(global))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func runCopy(cmd *cobra.Command, global *GlobalFlags, flags *CopyFlags, source, dest string) error {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := loadConfig(global)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlagsToConfig(cmd, cfg, global, flags); err != nil {
		return err
	}

	operation, err := createCopyOperation(cfg, source, dest)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
		}
		return err
	}

	logger, err := createLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	backend := storage.NewLocal()
	defer backend.Close()

	formatter := createFormatter(cfg, stdout)
	engine := sync.NewEngine(backend, formatter, logger, operation)

	report, err := engine.Run(ctx)
	if err != nil {
		return &ExitError{Code: report.Status.ExitCode(), Err: err, Reported: !cfg.Output.Quiet}
	}

	if flags.Report != "" {
		written, err := output.WriteAttentionReport(ctx, report, backend, flags.Report, flags.ReportFormat)
		if err != nil {
			logger.Error(ctx, "Failed to write attention report", err, logging.Fields{"path": flags.Report})
			fmt.Fprintf(stderr, "Error: %v\n", err)
		} else if written && !cfg.Output.Quiet && cfg.Output.Format != "json" {
			fmt.Fprintf(stdout, "Attention report written to %s\n", flags.Report)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Reported: true}
	}
	return nil
}

// createFormatter selects the output formatter from configuration
func createFormatter(cfg *config.Config, stdout io.Writer) output.Formatter {
	switch {
	case cfg.Output.Format == "json":
		return output.NewJSONFormatter(stdout)
	case cfg.Output.Quiet:
		return output.NewHumanFormatter(io.Discard, false)
	case cfg.Output.Progress:
		return output.NewProgressFormatter(stdout, cfg.Copy.PrintSkipped)
	default:
		return output.NewHumanFormatter(stdout, cfg.Copy.PrintSkipped)
	}
}

// createLogger creates a logger based on configuration
func createLogger(cfg config.LoggingConfig, stderr io.Writer) (logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NewNullLogger(), nil
	}

	return logging.New(logging.Config{
		Path:       cfg.File,
		Writer:     stderr,
		Format:     logging.Format(cfg.Format),
		Level:      logging.ParseLevel(cfg.Level),
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}
