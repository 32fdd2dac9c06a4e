package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsel/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tsel configuration",
	Long:  "View and manage tsel configuration stored in .tsel/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration for the repository.

Examples:
  tsel config show             # Current config as JSON
  tsel config show --repo=.    # Explicit repository root`,
	Run: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .tsel/config.json",
	Run:   runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)

	output, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting config: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
}

func runConfigInit(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()

	if err := config.DefaultConfig().Save(repoRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s/%s/config.json\n", repoRoot, config.ConfigDirName)
}
