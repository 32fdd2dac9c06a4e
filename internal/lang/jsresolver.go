package lang

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"tsel/internal/paths"
)

// jsResolver resolves module/package specifiers. The nearest-tsconfig
// lookup is memoized per directory; the memo is owned by one selection run
// so concurrent runs never share mutable state.
type jsResolver struct {
	configs map[string]*tsconfig // dir -> nearest config (nil = none above)
}

func newJSResolver() *jsResolver {
	return &jsResolver{configs: make(map[string]*tsconfig)}
}

// tsconfig is the subset of compilerOptions the resolver honors.
type tsconfig struct {
	dir      string // directory containing tsconfig.json
	baseDir  string // dir joined with compilerOptions.baseUrl
	patterns []aliasPattern
	rootDirs []string // absolute alternate roots
}

// aliasPattern is one compilerOptions.paths entry split at its wildcard.
type aliasPattern struct {
	prefix   string
	suffix   string
	wildcard bool
	targets  []string
}

// Resolve classifies the specifier as relative, repo-root-absolute, alias,
// or external, and maps it to an absolute file path inside the repository.
func (r *jsResolver) Resolve(fromFile string, specifier string, repoRoot string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	var candidate string
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || specifier == "." || specifier == "..":
		candidate = filepath.Join(filepath.Dir(fromFile), specifier)
	case strings.HasPrefix(specifier, "/"):
		candidate = filepath.Join(repoRoot, specifier)
	default:
		return r.resolveAlias(fromFile, specifier, repoRoot)
	}

	resolved, ok := resolveModuleFile(candidate)
	if !ok {
		return "", false
	}
	return acceptResolved(resolved, repoRoot)
}

// resolveAlias matches the specifier against the nearest tsconfig's paths
// patterns; anything that matches no pattern is an external package. With
// no tsconfig above the file, resolution falls back to repo-root-relative.
func (r *jsResolver) resolveAlias(fromFile string, specifier string, repoRoot string) (string, bool) {
	cfg := r.nearestConfig(filepath.Dir(fromFile), repoRoot)
	if cfg == nil {
		if resolved, ok := resolveModuleFile(filepath.Join(repoRoot, specifier)); ok {
			return acceptResolved(resolved, repoRoot)
		}
		return "", false
	}

	for _, pat := range cfg.patterns {
		captured, ok := matchAlias(pat, specifier)
		if !ok {
			continue
		}
		for _, target := range pat.targets {
			replaced := target
			if pat.wildcard {
				replaced = strings.Replace(target, "*", captured, 1)
			}

			bases := append([]string{cfg.baseDir}, cfg.rootDirs...)
			for _, base := range bases {
				if resolved, ok := resolveModuleFile(filepath.Join(base, replaced)); ok {
					return acceptResolved(resolved, repoRoot)
				}
			}
		}
	}
	return "", false
}

// matchAlias tests a specifier against one prefix*suffix pattern and
// returns the captured wildcard portion.
func matchAlias(pat aliasPattern, specifier string) (string, bool) {
	if !pat.wildcard {
		return "", specifier == pat.prefix
	}
	if !strings.HasPrefix(specifier, pat.prefix) || !strings.HasSuffix(specifier, pat.suffix) {
		return "", false
	}
	if len(specifier) < len(pat.prefix)+len(pat.suffix) {
		return "", false
	}
	return specifier[len(pat.prefix) : len(specifier)-len(pat.suffix)], true
}

// acceptResolved rejects resolved paths that escape the repository or land
// in a dependency-install directory.
func acceptResolved(resolved string, repoRoot string) (string, bool) {
	if !paths.IsWithinRepo(resolved, repoRoot) {
		return "", false
	}
	rel, err := paths.CanonicalizePath(resolved, repoRoot)
	if err != nil || paths.InDependencyDir(rel) {
		return "", false
	}
	return filepath.Clean(resolved), true
}

// resolveModuleFile applies the extension-inference search order: the path
// itself (when it already names a source file), each inferred extension,
// then a directory index fallback.
func resolveModuleFile(p string) (string, bool) {
	if isRegularFile(p) && (javascriptSupport{}).IsSourceFile(p) {
		return p, true
	}
	for _, ext := range javascriptExtensions {
		if isRegularFile(p + ext) {
			return p + ext, true
		}
	}
	for _, ext := range javascriptExtensions {
		index := filepath.Join(p, "index"+ext)
		if isRegularFile(index) {
			return index, true
		}
	}
	return "", false
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// nearestConfig walks ancestors from dir up to repoRoot looking for a
// tsconfig.json, memoizing the answer for every directory visited.
func (r *jsResolver) nearestConfig(dir string, repoRoot string) *tsconfig {
	if cfg, ok := r.configs[dir]; ok {
		return cfg
	}

	var cfg *tsconfig
	configPath := filepath.Join(dir, "tsconfig.json")
	if isRegularFile(configPath) {
		cfg = loadTSConfig(configPath)
	}
	if cfg == nil && dir != repoRoot {
		parent := filepath.Dir(dir)
		if parent != dir && strings.HasPrefix(dir, repoRoot) {
			cfg = r.nearestConfig(parent, repoRoot)
		}
	}

	r.configs[dir] = cfg
	return cfg
}

// loadTSConfig parses the alias-relevant subset of a tsconfig.json.
// Invalid files behave like a missing config.
func loadTSConfig(path string) *tsconfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var raw struct {
		CompilerOptions struct {
			BaseURL  string              `json:"baseUrl"`
			Paths    map[string][]string `json:"paths"`
			RootDirs []string            `json:"rootDirs"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(sanitizeJSONC(data), &raw); err != nil {
		return nil
	}

	dir := filepath.Dir(path)
	baseDir := dir
	if raw.CompilerOptions.BaseURL != "" {
		baseDir = filepath.Join(dir, raw.CompilerOptions.BaseURL)
	}

	cfg := &tsconfig{dir: dir, baseDir: baseDir}
	for _, rd := range raw.CompilerOptions.RootDirs {
		if !filepath.IsAbs(rd) {
			rd = filepath.Join(dir, rd)
		}
		cfg.rootDirs = append(cfg.rootDirs, rd)
	}

	// Longest prefix first mirrors the TypeScript resolver's specificity
	// order and keeps matching deterministic.
	keys := make([]string, 0, len(raw.CompilerOptions.Paths))
	for k := range raw.CompilerOptions.Paths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, _, _ := strings.Cut(keys[i], "*")
		pj, _, _ := strings.Cut(keys[j], "*")
		if len(pi) != len(pj) {
			return len(pi) > len(pj)
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		prefix, suffix, found := strings.Cut(k, "*")
		cfg.patterns = append(cfg.patterns, aliasPattern{
			prefix:   prefix,
			suffix:   suffix,
			wildcard: found,
			targets:  raw.CompilerOptions.Paths[k],
		})
	}
	return cfg
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// sanitizeJSONC strips // and /* */ comments plus trailing commas so the
// JSONC dialect tsconfig files use can pass through encoding/json.
func sanitizeJSONC(data []byte) []byte {
	var out []byte
	inString := false
	inLine := false
	inBlock := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				out = append(out, c)
			}
		case inBlock:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				inBlock = false
				i++
			}
		case inString:
			out = append(out, c)
			if c == '\\' && i+1 < len(data) {
				out = append(out, data[i+1])
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			inLine = true
			i++
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			inBlock = true
			i++
		default:
			out = append(out, c)
		}
	}

	return trailingCommaRe.ReplaceAll(out, []byte("$1"))
}
