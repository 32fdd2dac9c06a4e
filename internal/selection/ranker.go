// Package selection computes the affected test set for a list of seed
// files: BFS over the reverse import graph, route-reference augmentation,
// and the orchestrating engine with its cache consult.
package selection

import (
	"os"
	"sort"

	"tsel/internal/graph"
	"tsel/internal/lang"
)

// Result is the artifact handed to the runner layer.
type Result struct {
	// SelectedTestPaths is ordered by ascending rank, ties by path.
	SelectedTestPaths []string
	// RankByPath is the hop distance from the nearest seed for every
	// selected path.
	RankByPath map[string]int
	// CacheHit reports whether the result came from the selection cache,
	// in which case ranks are list positions, not graph distances.
	CacheHit bool
}

// Rank computes the shortest hop distance from any seed to every
// transitively reachable file, walking importer edges breadth first.
// Seeds start at distance 0. Cycles are handled by the visited check.
func Rank(reverse graph.Reverse, seeds []string) map[string]int {
	dist := make(map[string]int)
	queue := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if _, seen := dist[s]; seen {
			continue
		}
		dist[s] = 0
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, importer := range reverse.Importers(current) {
			if _, seen := dist[importer]; seen {
				continue
			}
			dist[importer] = dist[current] + 1
			queue = append(queue, importer)
		}
	}
	return dist
}

// selectTests filters the ranked files to those the classifier marks Test
// or Mixed; intermediate source-only hops stay out of the output. Seeds
// stay in the BFS even when deleted, but a deleted seed must not be
// selected itself; graph-discovered files existed at walk time, so only
// seed-originated paths need the existence check.
func selectTests(dist map[string]int, classifier *lang.Classifier, seeds []string) *Result {
	seedSet := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		seedSet[s] = struct{}{}
	}

	result := &Result{RankByPath: make(map[string]int)}
	for path, d := range dist {
		if _, isSeed := seedSet[path]; isSeed {
			if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		switch classifier.Classify(path) {
		case lang.KindTest, lang.KindMixed:
			result.RankByPath[path] = d
			result.SelectedTestPaths = append(result.SelectedTestPaths, path)
		}
	}
	sortByRank(result)
	return result
}

func sortByRank(r *Result) {
	sort.Slice(r.SelectedTestPaths, func(i, j int) bool {
		a, b := r.SelectedTestPaths[i], r.SelectedTestPaths[j]
		if r.RankByPath[a] != r.RankByPath[b] {
			return r.RankByPath[a] < r.RankByPath[b]
		}
		return a < b
	})
}
