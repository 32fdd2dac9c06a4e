package routes

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"tsel/internal/ignore"
	"tsel/internal/lang"
	"tsel/internal/logging"
)

var (
	// recv.get('/path', handler) and friends, any quote style.
	registrationRe = regexp.MustCompile("([A-Za-z_$][\\w$]*)\\s*\\.\\s*(get|post|put|delete|patch|options|head|all)\\s*\\(\\s*['\"`](/[^'\"`]*)['\"`]")

	// recv.use('/prefix', binding) mounting a sub-router.
	mountRe = regexp.MustCompile("[A-Za-z_$][\\w$]*\\s*\\.\\s*use\\s*\\(\\s*['\"`](/[^'\"`]*)['\"`]\\s*,\\s*([A-Za-z_$][\\w$]*)")

	// Import binding forms, local name -> specifier.
	importDefaultRe = regexp.MustCompile("import\\s+([A-Za-z_$][\\w$]*)\\s+from\\s+['\"]([^'\"]+)['\"]")
	importStarRe    = regexp.MustCompile("import\\s+\\*\\s+as\\s+([A-Za-z_$][\\w$]*)\\s+from\\s+['\"]([^'\"]+)['\"]")
	importNamedRe   = regexp.MustCompile("import\\s*\\{([^}]*)\\}\\s*from\\s+['\"]([^'\"]+)['\"]")
	requireRe       = regexp.MustCompile("(?:const|let|var)\\s+([A-Za-z_$][\\w$]*)\\s*=\\s*require\\s*\\(\\s*['\"]([^'\"]+)['\"]\\s*\\)")
)

// mount records one recv.use('/prefix', binding) with the binding resolved
// to the mounted file.
type mount struct {
	prefix string
	target string // absolute path of the mounted file
}

// Index holds every discovered route with mount-composed full paths, both
// as a per-file map and as a trie for path matching.
type Index struct {
	byFile map[string][]Route
	trie   *Trie
}

// RoutesOwnedBy returns the routes registered by the given file.
func (idx *Index) RoutesOwnedBy(fileAbs string) []Route {
	return idx.byFile[fileAbs]
}

// Match finds the routes handling a method and request path.
func (idx *Index) Match(method string, path string) []Route {
	return idx.trie.Match(method, path)
}

// All returns every indexed route ordered by path then method.
func (idx *Index) All() []Route {
	var all []Route
	for _, rs := range idx.byFile {
		all = append(all, rs...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Path != all[j].Path {
			return all[i].Path < all[j].Path
		}
		return all[i].Method < all[j].Method
	})
	return all
}

// Scanner builds a route index for one repository. Route discovery only
// applies to the module/package language family.
type Scanner struct {
	language lang.Support
	repoRoot string
	matcher  *ignore.Matcher
	logger   *logging.Logger
}

func NewScanner(language lang.Support, repoRoot string, matcher *ignore.Matcher, logger *logging.Logger) *Scanner {
	return &Scanner{language: language, repoRoot: repoRoot, matcher: matcher, logger: logger}
}

// Scan walks the repository once, collecting registrations and mounts, then
// composes each route's full path by concatenating mount prefixes along the
// chain of files mounting its owner.
func (s *Scanner) Scan() *Index {
	idx := &Index{byFile: make(map[string][]Route), trie: NewTrie()}
	if s.language.Name() != lang.LangJavaScript {
		return idx
	}

	raw := make(map[string][]Route) // owner file -> routes as written
	mountsOf := make(map[string][]mount)
	resolver := s.language.NewResolver()

	_ = filepath.WalkDir(s.repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(s.repoRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if s.matcher.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.matcher.Ignored(rel) || !s.language.IsSourceFile(path) {
			return nil
		}
		s.scanFile(path, resolver, raw, mountsOf)
		return nil
	})

	// mountedBy inverts mountsOf: which files mount this file, under which
	// prefix.
	mountedBy := make(map[string][]mount)
	for mounter, ms := range mountsOf {
		for _, m := range ms {
			mountedBy[m.target] = append(mountedBy[m.target], mount{prefix: m.prefix, target: mounter})
		}
	}

	for owner, rs := range raw {
		for _, r := range rs {
			for _, prefix := range mountPrefixes(owner, mountedBy) {
				full := r
				full.Path = joinRoutePath(prefix, r.Path)
				idx.byFile[owner] = append(idx.byFile[owner], full)
				idx.trie.Insert(full)
			}
		}
	}
	for owner := range idx.byFile {
		rs := idx.byFile[owner]
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].Path != rs[j].Path {
				return rs[i].Path < rs[j].Path
			}
			return rs[i].Method < rs[j].Method
		})
	}

	s.logger.Debug("route index built", map[string]interface{}{
		"files":  len(idx.byFile),
		"routes": len(idx.All()),
	})
	return idx
}

// scanFile extracts this file's registrations and, via its import bindings,
// the files it mounts.
func (s *Scanner) scanFile(path string, resolver lang.Resolver, raw map[string][]Route, mountsOf map[string][]mount) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	text := string(data)

	for _, m := range registrationRe.FindAllStringSubmatch(text, -1) {
		method := strings.ToUpper(m[2])
		if m[2] == "all" {
			method = WildcardMethod
		}
		raw[path] = append(raw[path], Route{Method: method, Path: m[3], File: path})
	}

	mountMatches := mountRe.FindAllStringSubmatch(text, -1)
	if len(mountMatches) == 0 {
		return
	}
	bindings := importBindings(text)
	for _, m := range mountMatches {
		spec, ok := bindings[m[2]]
		if !ok {
			continue
		}
		target, ok := resolver.Resolve(path, spec, s.repoRoot)
		if !ok {
			continue
		}
		mountsOf[path] = append(mountsOf[path], mount{prefix: m[1], target: target})
	}
}

// importBindings maps local identifiers to the specifier they were imported
// from, covering default, namespace, named (with renames) and require
// forms.
func importBindings(text string) map[string]string {
	bindings := make(map[string]string)
	for _, m := range importStarRe.FindAllStringSubmatch(text, -1) {
		bindings[m[1]] = m[2]
	}
	for _, m := range importDefaultRe.FindAllStringSubmatch(text, -1) {
		bindings[m[1]] = m[2]
	}
	for _, m := range requireRe.FindAllStringSubmatch(text, -1) {
		bindings[m[1]] = m[2]
	}
	for _, m := range importNamedRe.FindAllStringSubmatch(text, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			// "orig as local" binds the local name.
			if _, local, found := strings.Cut(name, " as "); found {
				name = strings.TrimSpace(local)
			}
			bindings[name] = m[2]
		}
	}
	return bindings
}

// mountPrefixes returns every mount-chain prefix leading to owner, walking
// mount edges upward. A file nothing mounts contributes the empty prefix.
// Cycles terminate through the visited set.
func mountPrefixes(owner string, mountedBy map[string][]mount) []string {
	var prefixes []string
	var walk func(file string, suffix string, seen map[string]bool)
	walk = func(file string, suffix string, seen map[string]bool) {
		if seen[file] {
			return
		}
		seen[file] = true
		defer delete(seen, file)

		parents := mountedBy[file]
		if len(parents) == 0 {
			prefixes = append(prefixes, suffix)
			return
		}
		for _, p := range parents {
			walk(p.target, joinRoutePath(p.prefix, suffix), seen)
		}
	}
	walk(owner, "", map[string]bool{})
	if len(prefixes) == 0 {
		// Every chain was cyclic; fall back to the unprefixed route.
		return []string{""}
	}

	sort.Strings(prefixes)
	deduped := prefixes[:0]
	for i, p := range prefixes {
		if i == 0 || p != prefixes[i-1] {
			deduped = append(deduped, p)
		}
	}
	return deduped
}

func joinRoutePath(prefix string, path string) string {
	joined := strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
	joined = strings.TrimSuffix(joined, "/")
	if joined == "" {
		return "/"
	}
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	return joined
}
