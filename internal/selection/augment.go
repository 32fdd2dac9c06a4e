package selection

import (
	"os"
	"strings"

	"tsel/internal/lang"
	"tsel/internal/routes"
)

// augmentedRank is the distance assigned to a test reaching a seed only
// through an HTTP route reference. It sorts such tests with direct
// importers while never downgrading a closer graph-discovered rank.
const augmentedRank = 1

// augmentWithRoutes unions in test files that reference a route owned by a
// seed: handlers exercised through an HTTP-shaped request rather than a
// static import. A test file counts when its raw text contains the
// composed route string literally.
func augmentWithRoutes(result *Result, idx *routes.Index, seeds []string, walked []string, classifier *lang.Classifier) {
	var routePaths []string
	seen := map[string]bool{}
	for _, seed := range seeds {
		for _, r := range idx.RoutesOwnedBy(seed) {
			if !seen[r.Path] {
				seen[r.Path] = true
				routePaths = append(routePaths, r.Path)
			}
		}
	}
	if len(routePaths) == 0 {
		return
	}

	for _, file := range walked {
		kind := classifier.Classify(file)
		if kind != lang.KindTest && kind != lang.KindMixed {
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		text := string(data)
		for _, routePath := range routePaths {
			if !strings.Contains(text, routePath) {
				continue
			}
			if existing, ok := result.RankByPath[file]; !ok || existing > augmentedRank {
				if !ok {
					result.SelectedTestPaths = append(result.SelectedTestPaths, file)
				}
				result.RankByPath[file] = augmentedRank
			}
			break
		}
	}
	sortByRank(result)
}
