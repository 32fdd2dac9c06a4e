package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsel/internal/config"
	"tsel/internal/errors"
	"tsel/internal/logging"
	"tsel/internal/selection"
	"tsel/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "tsel",
	Short: "tsel - test impact selection",
	Long: `tsel computes the minimal set of tests affected by a set of changed
source files, using a reverse static-import graph, BFS hop-distance ranking,
and HTTP route-reference augmentation.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("tsel version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".",
		"Repository root to analyze")
}

// mustGetRepoRoot resolves the --repo flag to a canonical repository root,
// exiting on failure.
func mustGetRepoRoot() string {
	root, err := selection.ResolveRepoRoot(repoFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// mustLoadConfig loads the repository's .tsel/config.json, exiting on a
// malformed file. A missing file yields defaults.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		err = errors.New(errors.ConfigInvalid, "load "+config.ConfigDirName+"/config.json", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the run logger from config, keeping log output off
// stdout when the command emits machine-readable output there.
func newLogger(cfg *config.Config, outputFormat string) *logging.Logger {
	format := logging.Format(cfg.Logging.Format)
	if outputFormat == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}
