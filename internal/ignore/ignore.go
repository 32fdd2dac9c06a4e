// Package ignore decides which paths the repository walk skips: version
// control ignore rules, a fixed built-in exclude set, and caller-supplied
// glob patterns.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// builtinExcludes are directory names skipped regardless of ignore files:
// VCS metadata, dependency installs, build output and coverage trees.
var builtinExcludes = map[string]bool{
	".git":         true,
	".tsel":        true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
}

// Matcher combines the three ignore sources for one repository.
type Matcher struct {
	rules      *gitignore.GitIgnore // nil when no .gitignore exists
	extraGlobs []string
}

// NewMatcher reads the repository's root .gitignore (absence is fine) and
// records caller globs. Glob patterns match repo-relative slash paths.
func NewMatcher(repoRoot string, extraGlobs []string) *Matcher {
	m := &Matcher{extraGlobs: extraGlobs}
	if rules, err := gitignore.CompileIgnoreFile(filepath.Join(repoRoot, ".gitignore")); err == nil {
		m.rules = rules
	}
	return m
}

// SkipDir reports whether a directory (repo-relative slash path) should be
// pruned from the walk entirely.
func (m *Matcher) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	if builtinExcludes[filepath.Base(rel)] {
		return true
	}
	return m.matchRules(rel + "/")
}

// Ignored reports whether a file (repo-relative slash path) is excluded
// from the walk.
func (m *Matcher) Ignored(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if builtinExcludes[seg] {
			return true
		}
	}
	return m.matchRules(rel)
}

func (m *Matcher) matchRules(rel string) bool {
	if m.rules != nil && m.rules.MatchesPath(rel) {
		return true
	}
	for _, glob := range m.extraGlobs {
		if ok, _ := doublestar.Match(glob, strings.TrimSuffix(rel, "/")); ok {
			return true
		}
	}
	return false
}
