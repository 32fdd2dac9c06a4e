package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsel/internal/ignore"
	"tsel/internal/lang"
	"tsel/internal/routes"
)

var (
	routesMethod string
	routesPath   string
	routesFormat string
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List discovered HTTP routes, or match a request path",
	Long: `Scan the repository for HTTP route registrations and mounts and print
the composed route table. With --path, match one request against the route
trie instead.

Examples:
  tsel routes                               # Full route table
  tsel routes --method=GET --path=/users/7  # Who handles this request`,
	Run: runRoutes,
}

func init() {
	routesCmd.Flags().StringVar(&routesMethod, "method", "GET", "HTTP method for --path matching")
	routesCmd.Flags().StringVar(&routesPath, "path", "", "Request path to match against the route trie")
	routesCmd.Flags().StringVar(&routesFormat, "format", "human", "Output format (json, human)")

	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, routesFormat)

	language, err := lang.ForLanguage(cfg.Language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	matcher := ignore.NewMatcher(repoRoot, cfg.Exclude)
	idx := routes.NewScanner(language, repoRoot, matcher, logger).Scan()

	var listed []routes.Route
	if routesPath != "" {
		listed = idx.Match(routesMethod, routesPath)
	} else {
		listed = idx.All()
	}

	if routesFormat == "json" {
		output, err := json.MarshalIndent(convertRoutes(listed), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
		return
	}

	if len(listed) == 0 {
		fmt.Println("No routes found.")
		return
	}
	for _, r := range listed {
		fmt.Printf("%-7s %-40s %s\n", r.Method, r.Path, r.File)
	}
}

// RouteCLI is the JSON output shape of one route.
type RouteCLI struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	File   string `json:"file"`
}

func convertRoutes(rs []routes.Route) []RouteCLI {
	out := make([]RouteCLI, len(rs))
	for i, r := range rs {
		out[i] = RouteCLI{Method: r.Method, Path: r.Path, File: r.File}
	}
	return out
}
