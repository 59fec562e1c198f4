package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KostasZigo/rgit/internal/repository"
	"github.com/spf13/cobra"
)

var verboseFlag bool

// rootCmd defines the base command for the rgit CLI.
// Every subcommand registers itself under this root from its own init.
var rootCmd = &cobra.Command{
	Use:   "rgit",
	Short: "A minimal content-addressable version control system",
	Long: `rgit stores snapshots of files as hashed, compressed objects and rebuilds
a working directory from any point of their history.

Plumbing commands (hash-object, cat-file, update-index, write-tree, commit-tree,
update-ref, symbolic-ref, rev-parse, show-ref) expose the object and ref stores directly;
commit, checkout, log, push and fetch are built on top of them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log debug output to stderr")
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a text handler on stderr: debug level when verbose, warn otherwise.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openRepository finds the repository containing the current directory.
func openRepository() (*repository.Repository, error) {
	return repository.Find(".")
}

// exactArgs validates command receives exactly n positional arguments.
// Enables usage printing in case of error.
func exactArgs(n int) cobra.PositionalArgs {
	return rangeArgs(n, n)
}

// maximumArgs validates command receives at most n positional arguments.
func maximumArgs(n int) cobra.PositionalArgs {
	return rangeArgs(0, n)
}

// rangeArgs validates command receives between lo and hi positional arguments.
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= lo && len(args) <= hi {
			return nil
		}

		cmd.SilenceUsage = false
		switch {
		case lo == hi:
			return fmt.Errorf("%s command requires exactly %d argument(s), received %d", cmd.Name(), lo, len(args))
		case lo == 0:
			return fmt.Errorf("%s command accepts at most %d argument(s), received %d", cmd.Name(), hi, len(args))
		default:
			return fmt.Errorf("%s command requires %d to %d arguments, received %d", cmd.Name(), lo, hi, len(args))
		}
	}
}
