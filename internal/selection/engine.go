package selection

import (
	"context"
	"os"
	"path/filepath"

	"tsel/internal/cache"
	"tsel/internal/errors"
	"tsel/internal/gitstate"
	"tsel/internal/graph"
	"tsel/internal/ignore"
	"tsel/internal/lang"
	"tsel/internal/logging"
	"tsel/internal/paths"
	"tsel/internal/routes"
)

// Engine orchestrates one selection run: cache consult, graph build, BFS
// ranking, route augmentation, cache write-back.
type Engine struct {
	repoRoot string
	language lang.Support
	store    *cache.Store
	excludes []string
	logger   *logging.Logger
}

// NewEngine wires an engine for one repository.
func NewEngine(repoRoot string, language lang.Support, store *cache.Store, excludes []string, logger *logging.Logger) *Engine {
	return &Engine{
		repoRoot: repoRoot,
		language: language,
		store:    store,
		excludes: excludes,
		logger:   logger,
	}
}

// Select computes the affected test set for the given seed files. An empty
// seed list short-circuits to an empty result without touching the
// repository. Caching is best-effort in both directions.
func (e *Engine) Select(ctx context.Context, seeds []string) (*Result, error) {
	if len(seeds) == 0 {
		return &Result{RankByPath: make(map[string]int)}, nil
	}

	absSeeds, err := e.normalizeSeeds(seeds)
	if err != nil {
		return nil, err
	}

	repoKey := paths.ComputeRepoHash(gitstate.Identity(e.repoRoot))
	commit := gitstate.ShortCommit(e.repoRoot)
	key := cache.Key(repoKey, commit, cache.Fingerprint(absSeeds))

	if cached, ok := e.store.Get(repoKey, key); ok {
		e.logger.Debug("selection cache hit", map[string]interface{}{
			"key":   key,
			"tests": len(cached),
		})
		return resultFromCached(cached), nil
	}

	result, err := e.compute(ctx, absSeeds)
	if err != nil {
		return nil, err
	}

	e.store.Put(repoKey, key, result.SelectedTestPaths)
	return result, nil
}

func (e *Engine) compute(ctx context.Context, absSeeds []string) (*Result, error) {
	matcher := ignore.NewMatcher(e.repoRoot, e.excludes)
	reverse, walked, err := graph.NewBuilder(e.language, e.repoRoot, matcher, e.logger).Build(ctx)
	if err != nil {
		return nil, errors.New(errors.InternalError, "build reverse import graph", err)
	}

	classifier := lang.NewClassifier(e.language, e.repoRoot)
	result := selectTests(Rank(reverse, absSeeds), classifier, absSeeds)

	idx := routes.NewScanner(e.language, e.repoRoot, matcher, e.logger).Scan()
	augmentWithRoutes(result, idx, absSeeds, walked, classifier)

	e.logger.Info("selection computed", map[string]interface{}{
		"seeds": len(absSeeds),
		"tests": len(result.SelectedTestPaths),
	})
	return result, nil
}

// normalizeSeeds makes every seed absolute and rejects seeds outside the
// repository root. Seeds are kept even if the file no longer exists; a
// deleted file's importers are still affected.
func (e *Engine) normalizeSeeds(seeds []string) ([]string, error) {
	out := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		abs := seed
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(e.repoRoot, seed)
		}
		abs = filepath.Clean(abs)
		if !paths.IsWithinRepo(abs, e.repoRoot) {
			return nil, errors.New(errors.SeedOutsideRepo, "seed path outside repository: "+seed, nil)
		}
		out = append(out, abs)
	}
	return out, nil
}

// resultFromCached rebuilds a Result from a cached path list. The cache
// stores no rank map, so rank is synthesized from list position.
func resultFromCached(cached []string) *Result {
	result := &Result{
		SelectedTestPaths: append([]string(nil), cached...),
		RankByPath:        make(map[string]int, len(cached)),
		CacheHit:          true,
	}
	for i, p := range cached {
		result.RankByPath[p] = i
	}
	return result
}

// SeedsFromChangedFiles expands the caller's "changed since" request into
// seed paths via git, filtered to files of the active language.
func SeedsFromChangedFiles(repoRoot string, base string, language lang.Support) ([]string, error) {
	changed, err := gitstate.ChangedFiles(repoRoot, base)
	if err != nil {
		return nil, err
	}
	var seeds []string
	for _, rel := range changed {
		if language.IsSourceFile(rel) {
			seeds = append(seeds, filepath.Join(repoRoot, rel))
		}
	}
	return seeds, nil
}

// ResolveRepoRoot validates and canonicalizes the caller-supplied repo
// path. Inside a git checkout the toplevel wins, so the command works from
// any subdirectory; non-git trees use the path as given.
func ResolveRepoRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(errors.RepoNotFound, "resolve repository path: "+path, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", errors.New(errors.RepoNotFound, "repository root not found: "+abs, err)
	}
	if top, err := gitstate.RepoRoot(abs); err == nil {
		abs = top
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}
