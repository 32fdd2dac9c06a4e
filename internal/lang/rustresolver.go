package lang

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tsel/internal/paths"
)

// rustResolver resolves crate-internal module paths. Manifest lookups are
// memoized per directory for the lifetime of one selection run.
type rustResolver struct {
	crates map[string]*crateInfo // dir -> owning crate (nil = none above)
}

func newRustResolver() *rustResolver {
	return &rustResolver{crates: make(map[string]*crateInfo)}
}

// crateInfo describes the package that owns a source file.
type crateInfo struct {
	name    string // package name with '-' normalized to '_'
	srcRoot string // <manifest dir>/src
}

// Resolve maps a specifier produced by the extractor to the file defining
// the referenced module. External crates and unresolvable paths return
// false.
func (r *rustResolver) Resolve(fromFile string, specifier string, repoRoot string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	// Module declarations carrying a path attribute join directly under
	// the repository root.
	if rel, ok := strings.CutPrefix(specifier, "path:"); ok {
		candidate := paths.JoinRepoPath(repoRoot, rel)
		if isRegularFile(candidate) {
			return acceptResolved(candidate, repoRoot)
		}
		return "", false
	}

	crate := r.owningCrate(filepath.Dir(fromFile), repoRoot)

	segs := strings.Split(specifier, "::")
	base := ""
	ownCrate := false
	switch segs[0] {
	case "crate":
		base = crateSrcRoot(crate, repoRoot)
		segs = segs[1:]
		ownCrate = true
	case "self":
		base = ownModuleDir(fromFile)
		segs = segs[1:]
	case "super":
		base = ownModuleDir(fromFile)
		for len(segs) > 0 && segs[0] == "super" {
			base = filepath.Dir(base)
			segs = segs[1:]
		}
	default:
		if crate != nil && segs[0] == crate.name {
			base = crate.srcRoot
			segs = segs[1:]
			ownCrate = true
		} else {
			// Bare specifiers (mod declarations, single-segment use paths)
			// resolve against the file's module directory. External crate
			// paths simply find no file here.
			base = ownModuleDir(fromFile)
		}
	}

	resolved, ok := resolveModulePath(base, segs, ownCrate)
	if !ok {
		return "", false
	}
	return acceptResolved(resolved, repoRoot)
}

// crateSrcRoot returns the source root for crate:: paths. Without a
// manifest, resolution falls back to repo-root-relative: <repo>/src when
// that directory exists, otherwise the repo root itself.
func crateSrcRoot(c *crateInfo, repoRoot string) string {
	if c != nil {
		return c.srcRoot
	}
	if info, err := os.Stat(filepath.Join(repoRoot, "src")); err == nil && info.IsDir() {
		return filepath.Join(repoRoot, "src")
	}
	return repoRoot
}

// resolveModulePath joins the remaining segments under base and probes for
// the module file. Trailing segments naming items rather than modules are
// dropped one at a time until a file is found. Only paths that named their
// own crate explicitly may degrade all the way to the crate root module;
// a bare path that matches no file stays unresolved so external crates
// never produce an edge.
func resolveModulePath(base string, segs []string, ownCrate bool) (string, bool) {
	for n := len(segs); n >= 0; n-- {
		remaining := segs[:n]
		if len(remaining) == 0 {
			if ownCrate {
				for _, root := range []string{"lib.rs", "main.rs"} {
					if p := filepath.Join(base, root); isRegularFile(p) {
						return p, true
					}
				}
			}
			return "", false
		}

		joined := filepath.Join(append([]string{base}, remaining...)...)
		if p := joined + ".rs"; isRegularFile(p) {
			return p, true
		}
		if p := filepath.Join(joined, "mod.rs"); isRegularFile(p) {
			return p, true
		}
	}
	return "", false
}

// ownModuleDir returns the directory a file's child modules live in: the
// containing directory for root modules (lib.rs, main.rs, mod.rs), a
// sibling directory named after the file otherwise.
func ownModuleDir(fromFile string) string {
	dir := filepath.Dir(fromFile)
	switch filepath.Base(fromFile) {
	case "lib.rs", "main.rs", "mod.rs":
		return dir
	}
	return filepath.Join(dir, strings.TrimSuffix(filepath.Base(fromFile), ".rs"))
}

// owningCrate finds the nearest ancestor Cargo.toml and reads the declared
// package name, memoizing every directory visited.
func (r *rustResolver) owningCrate(dir string, repoRoot string) *crateInfo {
	if crate, ok := r.crates[dir]; ok {
		return crate
	}

	var crate *crateInfo
	manifest := filepath.Join(dir, "Cargo.toml")
	if isRegularFile(manifest) {
		crate = loadCrateManifest(manifest)
	}
	if crate == nil && dir != repoRoot {
		parent := filepath.Dir(dir)
		if parent != dir && strings.HasPrefix(dir, repoRoot) {
			crate = r.owningCrate(parent, repoRoot)
		}
	}

	r.crates[dir] = crate
	return crate
}

// loadCrateManifest parses the package name out of a Cargo.toml. Workspace
// manifests without a [package] section, and malformed files, yield nil.
func loadCrateManifest(path string) *crateInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var manifest struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	if manifest.Package.Name == "" {
		return nil
	}

	return &crateInfo{
		name:    strings.ReplaceAll(manifest.Package.Name, "-", "_"),
		srcRoot: filepath.Join(filepath.Dir(path), "src"),
	}
}
