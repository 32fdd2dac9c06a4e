// Package paths provides path canonicalization and repository containment
// helpers shared by the resolvers, the graph builder and the cache.
package paths

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CacheRootEnvVar overrides the selection cache root directory.
const CacheRootEnvVar = "TSEL_CACHE_DIR"

// DefaultCacheDirName is the directory created under the OS temp dir when no
// override is configured.
const DefaultCacheDirName = "tsel-cache"

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	// Resolve symlinks
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			repoRootResolved = repoRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(relativePath), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}

	// Path is outside repo if it starts with ..
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// InDependencyDir reports whether the repo-relative slash path has a
// dependency-install directory anywhere on it. Resolved imports landing in
// these directories are treated as external.
func InDependencyDir(relSlashPath string) bool {
	for _, seg := range strings.Split(relSlashPath, "/") {
		if seg == "node_modules" || seg == "vendor" || seg == "target" {
			return true
		}
	}
	return false
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// ComputeRepoHash derives a short, stable identifier for a repository from
// its identity string (the resolved .git directory, or the root path for
// non-git trees). 8 bytes of SHA256, hex encoded.
func ComputeRepoHash(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return fmt.Sprintf("%x", sum[:8])
}

// CacheRoot returns the directory that holds per-repository cache files.
// Precedence: TSEL_CACHE_DIR env var > configured override > OS temp dir.
func CacheRoot(configured string) string {
	if env := os.Getenv(CacheRootEnvVar); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return filepath.Join(os.TempDir(), DefaultCacheDirName)
}
