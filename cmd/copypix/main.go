package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdejongh/copypix/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.Version, cli.Commit, cli.BuildDate = version, commit, date

	// Cancellation takes effect between candidates
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || (!exitErr.Reported && exitErr.Err != nil) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Run 'copypix --help' for usage.")
		}
	}

	return cli.ExitCode(err)
}
