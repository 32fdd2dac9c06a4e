// Package graph builds the reverse import graph: for every file in the
// repository, which files import it. The graph is rebuilt on every
// invocation; correctness over incremental speed.
package graph

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"tsel/internal/ignore"
	"tsel/internal/lang"
	"tsel/internal/logging"
)

// Reverse maps a target absolute path to the sorted, deduplicated list of
// files that import it.
type Reverse map[string][]string

// Importers returns the files importing target, or nil.
func (r Reverse) Importers(target string) []string {
	return r[target]
}

// Builder walks one repository and extracts resolved import edges.
type Builder struct {
	language lang.Support
	repoRoot string
	matcher  *ignore.Matcher
	logger   *logging.Logger
	workers  int
}

// NewBuilder wires a builder for one repository walk.
func NewBuilder(language lang.Support, repoRoot string, matcher *ignore.Matcher, logger *logging.Logger) *Builder {
	return &Builder{
		language: language,
		repoRoot: repoRoot,
		matcher:  matcher,
		logger:   logger,
		workers:  runtime.NumCPU(),
	}
}

// Build walks the repository, extracts and resolves every import, and
// returns the reverse map plus the sorted list of source files walked.
// Files are processed in parallel partitions; per-file read or parse
// failures contribute nothing and never fail the build.
func (b *Builder) Build(ctx context.Context) (Reverse, []string, error) {
	files, err := b.collectSourceFiles()
	if err != nil {
		return nil, nil, err
	}

	b.logger.Debug("building reverse import graph", map[string]interface{}{
		"files":   len(files),
		"workers": b.workers,
	})

	partials := make([]Reverse, b.workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < b.workers; w++ {
		w := w
		g.Go(func() error {
			partial := make(Reverse)
			resolver := b.language.NewResolver()
			for i := w; i < len(files); i += b.workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				b.addEdges(partial, resolver, files[i])
			}
			partials[w] = partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return mergePartials(partials), files, nil
}

// addEdges records one importer's resolved edges into the partial map.
func (b *Builder) addEdges(partial Reverse, resolver lang.Resolver, fromFile string) {
	src, err := os.ReadFile(fromFile)
	if err != nil {
		return
	}
	for _, spec := range b.language.ExtractImports(fromFile, src) {
		target, ok := resolver.Resolve(fromFile, spec, b.repoRoot)
		if !ok || target == fromFile {
			continue
		}
		partial[target] = append(partial[target], fromFile)
	}
}

// collectSourceFiles walks the tree once, pruning ignored directories and
// keeping files the active language recognizes.
func (b *Builder) collectSourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(b.repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries contribute nothing.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(b.repoRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if b.matcher.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if b.matcher.Ignored(rel) {
			return nil
		}
		if b.language.IsSourceFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// mergePartials unions the per-worker maps and sorts and dedups every
// importer list for deterministic output.
func mergePartials(partials []Reverse) Reverse {
	merged := make(Reverse)
	for _, partial := range partials {
		for target, importers := range partial {
			merged[target] = append(merged[target], importers...)
		}
	}
	for target, importers := range merged {
		sort.Strings(importers)
		deduped := importers[:0]
		for i, imp := range importers {
			if i == 0 || imp != importers[i-1] {
				deduped = append(deduped, imp)
			}
		}
		merged[target] = deduped
	}
	return merged
}
