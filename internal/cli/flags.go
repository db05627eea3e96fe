package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

// CopyFlags holds the flags of the copy command. Values only override the
// configuration when the flag was set on the command line.
type CopyFlags struct {
	Extensions     []string
	Exclude        []string
	Overwrite      bool
	OverwriteEmpty bool
	NoVerify       bool
	PrintSkipped   bool
	Hash           string
	Parallel       int
	Bandwidth      string
	Output         string
	Report         string
	ReportFormat   string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

// addGlobalFlags adds global flags to the root command
func addGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVar(
		&flags.ConfigFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/copypix/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&flags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output (lists identical files, debug logging)",
	)
	cmd.PersistentFlags().BoolVarP(
		&flags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// addCopyFlags adds the copy flags to the root command
func addCopyFlags(cmd *cobra.Command, flags *CopyFlags) {
	f := cmd.Flags()
	f.StringSliceVar(&flags.Extensions, "ext", nil, "file extension to copy, repeatable (default .cr2,.jpg)")
	f.StringSliceVar(&flags.Exclude, "exclude", nil, "glob patterns of file names to exclude")
	f.BoolVar(&flags.Overwrite, "overwrite", false, "replace destination files whose content differs")
	f.BoolVar(&flags.OverwriteEmpty, "overwrite-empty", false, "replace empty destination files even without --overwrite")
	f.BoolVar(&flags.NoVerify, "no-verify", false, "skip hash verification after each copy")
	f.BoolVar(&flags.PrintSkipped, "print-skipped", false, "list files skipped because they are identical")
	f.StringVar(&flags.Hash, "hash", "", "hash algorithm: sha256, md5")
	f.IntVarP(&flags.Parallel, "parallel", "p", 0, "number of parallel workers (default 1)")
	f.StringVarP(&flags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	f.StringVarP(&flags.Output, "output", "o", "", "output format: human, json")
	f.StringVar(&flags.Report, "report", "", "write files needing attention to a report file")
	f.StringVar(&flags.ReportFormat, "report-format", "human", "attention report format: human, json")

	f.StringVar(&flags.LogFile, "log-file", "", "write logs to file (enables logging)")
	f.StringVar(&flags.LogFormat, "log-format", "", "log format: text, json")
	f.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}
