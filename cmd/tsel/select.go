package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tsel/internal/cache"
	"tsel/internal/gitstate"
	"tsel/internal/lang"
	"tsel/internal/paths"
	"tsel/internal/selection"
)

var (
	selectLanguage string
	selectExclude  []string
	selectNoCache  bool
	selectChanged  string
	selectFormat   string
)

var selectCmd = &cobra.Command{
	Use:   "select [seed files...]",
	Short: "Select tests affected by the given files",
	Long: `Compute the minimal affected test set for a list of seed files.

Seeds are source files that changed (or that you want tests for). With
--changed, seeds are taken from git instead of the argument list.

Examples:
  tsel select src/auth.ts                  # Tests affected by one file
  tsel select --changed=main               # Seeds from git diff against main
  tsel select --format=list src/auth.ts    # Paths only, one per line (CI)
  tsel select --no-cache src/auth.ts       # Skip the selection cache`,
	Run: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectLanguage, "language", "", "Dependency language: javascript or rust (default from config)")
	selectCmd.Flags().StringArrayVar(&selectExclude, "exclude", nil, "Glob pattern to exclude from the walk (repeatable)")
	selectCmd.Flags().BoolVar(&selectNoCache, "no-cache", false, "Bypass the selection cache for this run")
	selectCmd.Flags().StringVar(&selectChanged, "changed", "", "Derive seeds from git changes against this base")
	selectCmd.Flags().StringVar(&selectFormat, "format", "human", "Output format (json, human, list)")

	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) {
	start := time.Now()

	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg, selectFormat)

	languageName := cfg.Language
	if selectLanguage != "" {
		languageName = selectLanguage
	}
	language, err := lang.ForLanguage(languageName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	seeds := args
	if selectChanged != "" {
		seeds, err = selection.SeedsFromChangedFiles(repoRoot, selectChanged, language)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing changed files: %v\n", err)
			os.Exit(1)
		}
	}

	store := cache.NewStore(
		paths.CacheRoot(cfg.Cache.Root),
		selectNoCache || cfg.Cache.Disabled,
		logger,
	)
	excludes := append(append([]string(nil), cfg.Exclude...), selectExclude...)
	engine := selection.NewEngine(repoRoot, language, store, excludes, logger)

	result, err := engine.Select(context.Background(), seeds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting tests: %v\n", err)
		os.Exit(1)
	}

	switch selectFormat {
	case "list":
		for _, test := range result.SelectedTestPaths {
			fmt.Println(test)
		}
	case "json":
		prov := ProvenanceCLI{
			RepoKey:    paths.ComputeRepoHash(gitstate.Identity(repoRoot)),
			Commit:     gitstate.ShortCommit(repoRoot),
			CacheHit:   result.CacheHit,
			DurationMs: time.Since(start).Milliseconds(),
		}
		output, err := json.MarshalIndent(convertSelectionResponse(result, seeds, prov), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(output))
	default:
		fmt.Print(formatSelectionHuman(result))
	}

	logger.Debug("selection completed", map[string]interface{}{
		"seeds":    len(seeds),
		"tests":    len(result.SelectedTestPaths),
		"duration": time.Since(start).Milliseconds(),
	})
}

// SelectionResponseCLI is the JSON output shape of the select command.
type SelectionResponseCLI struct {
	Seeds      []string          `json:"seeds"`
	Tests      []SelectedTestCLI `json:"tests"`
	Ranks      map[string]int    `json:"ranks"`
	Provenance ProvenanceCLI     `json:"provenance"`
}

// SelectedTestCLI describes one selected test file.
type SelectedTestCLI struct {
	FilePath string `json:"filePath"`
	Rank     int    `json:"rank"`
}

// ProvenanceCLI records what state the selection was computed against.
type ProvenanceCLI struct {
	RepoKey    string `json:"repoKey"`
	Commit     string `json:"commit"`
	CacheHit   bool   `json:"cacheHit"`
	DurationMs int64  `json:"durationMs"`
}

func convertSelectionResponse(result *selection.Result, seeds []string, prov ProvenanceCLI) *SelectionResponseCLI {
	tests := make([]SelectedTestCLI, len(result.SelectedTestPaths))
	for i, p := range result.SelectedTestPaths {
		tests[i] = SelectedTestCLI{FilePath: p, Rank: result.RankByPath[p]}
	}
	return &SelectionResponseCLI{
		Seeds:      seeds,
		Tests:      tests,
		Ranks:      result.RankByPath,
		Provenance: prov,
	}
}

func formatSelectionHuman(result *selection.Result) string {
	var b strings.Builder

	b.WriteString("Affected Tests\n")
	b.WriteString("──────────────────────────────────────────────────────────\n\n")

	if len(result.SelectedTestPaths) == 0 {
		b.WriteString("No affected tests found.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Found %d test files:\n", len(result.SelectedTestPaths)))
	for _, p := range result.SelectedTestPaths {
		b.WriteString(fmt.Sprintf("  • [rank %d] %s\n", result.RankByPath[p], p))
	}
	return b.String()
}
