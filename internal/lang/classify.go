package lang

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"tsel/internal/paths"
)

// Kind labels what role a file plays for selection purposes.
type Kind int

const (
	// KindSource is production code: ranked for reachability but never
	// selected.
	KindSource Kind = iota
	// KindTest is a dedicated test file.
	KindTest
	// KindMixed is production code carrying embedded tests.
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindTest:
		return "test"
	case KindMixed:
		return "mixed"
	default:
		return "source"
	}
}

// ClassifierOverrideFile sits at the repo root and lets a project add its
// own test/source glob patterns on top of the built-in heuristics.
const ClassifierOverrideFile = "tsel.config.yaml"

// Classifier labels files Source, Test, or Mixed using naming and location
// heuristics, with optional per-repo glob overrides. Results are memoized;
// one Classifier belongs to one selection run.
type Classifier struct {
	language    Support
	repoRoot    string
	testGlobs   []string
	sourceGlobs []string
	kinds       map[string]Kind
}

// NewClassifier builds a classifier for one repository, loading the
// override file when present. A malformed override file is ignored.
func NewClassifier(language Support, repoRoot string) *Classifier {
	c := &Classifier{
		language: language,
		repoRoot: repoRoot,
		kinds:    make(map[string]Kind),
	}

	data, err := os.ReadFile(filepath.Join(repoRoot, ClassifierOverrideFile))
	if err != nil {
		return c
	}
	var overrides struct {
		TestGlobs   []string `yaml:"testGlobs"`
		SourceGlobs []string `yaml:"sourceGlobs"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return c
	}
	c.testGlobs = overrides.TestGlobs
	c.sourceGlobs = overrides.SourceGlobs
	return c
}

// Classify labels an absolute path. Override globs win over heuristics,
// test globs over source globs.
func (c *Classifier) Classify(path string) Kind {
	if kind, ok := c.kinds[path]; ok {
		return kind
	}
	kind := c.classify(path)
	c.kinds[path] = kind
	return kind
}

func (c *Classifier) classify(path string) Kind {
	rel, err := paths.CanonicalizePath(path, c.repoRoot)
	if err != nil {
		rel = filepath.ToSlash(path)
	}

	for _, glob := range c.testGlobs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return KindTest
		}
	}
	for _, glob := range c.sourceGlobs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return KindSource
		}
	}

	switch c.language.Name() {
	case LangRust:
		return classifyRust(path, rel)
	default:
		return classifyJavaScript(rel)
	}
}

// testDirNames are directory segments that mark everything beneath them as
// test code.
var testDirNames = map[string]bool{
	"__tests__": true,
	"test":      true,
	"tests":     true,
}

func classifyJavaScript(rel string) Kind {
	segments := strings.Split(rel, "/")
	base := segments[len(segments)-1]
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return KindTest
	}
	for _, seg := range segments[:len(segments)-1] {
		if testDirNames[seg] {
			return KindTest
		}
	}
	return KindSource
}

// classifyRust treats the conventional integration-test tree as Test and
// files with an embedded test module as Mixed.
func classifyRust(path string, rel string) Kind {
	for _, seg := range strings.Split(rel, "/") {
		if seg == "tests" {
			return KindTest
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return KindSource
	}
	if strings.Contains(string(data), "#[cfg(test)]") {
		return KindMixed
	}
	return KindSource
}
