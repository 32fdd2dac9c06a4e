package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	repo := t.TempDir()
	file := filepath.Join(repo, "src", "a.ts")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(file, []byte("export {}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := CanonicalizePath(file, repo)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "src/a.ts" {
		t.Errorf("CanonicalizePath = %q, want src/a.ts", got)
	}
}

func TestCanonicalizePathMissingFile(t *testing.T) {
	repo := t.TempDir()

	// Non-existent paths canonicalize without error
	got, err := CanonicalizePath(filepath.Join(repo, "gone.rs"), repo)
	if err != nil {
		t.Fatalf("CanonicalizePath failed for missing file: %v", err)
	}
	if got != "gone.rs" {
		t.Errorf("CanonicalizePath = %q, want gone.rs", got)
	}
}

func TestIsWithinRepo(t *testing.T) {
	repo := t.TempDir()
	outside := t.TempDir()

	if !IsWithinRepo(filepath.Join(repo, "src", "a.ts"), repo) {
		t.Error("path under repo root should be within repo")
	}
	if IsWithinRepo(filepath.Join(outside, "a.ts"), repo) {
		t.Error("path outside repo root should not be within repo")
	}
	if IsWithinRepo(filepath.Join(repo, "..", "escape.ts"), repo) {
		t.Error("dot-dot escape should not be within repo")
	}
}

func TestInDependencyDir(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/a.ts", false},
		{"node_modules/react/index.js", true},
		{"packages/app/node_modules/x/y.js", true},
		{"target/debug/build.rs", true},
		{"vendor/lib.js", true},
		{"src/targets.ts", false},
	}

	for _, tt := range tests {
		if got := InDependencyDir(tt.path); got != tt.want {
			t.Errorf("InDependencyDir(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestComputeRepoHash(t *testing.T) {
	// Same identity should produce same hash
	hash1 := ComputeRepoHash("/some/repo/.git")
	hash2 := ComputeRepoHash("/some/repo/.git")
	if hash1 != hash2 {
		t.Errorf("Expected same hash for same identity, got %s != %s", hash1, hash2)
	}

	// Different identities should produce different hashes
	hash3 := ComputeRepoHash("/different/repo/.git")
	if hash1 == hash3 {
		t.Errorf("Expected different hash for different identity, got %s == %s", hash1, hash3)
	}

	if len(hash1) != 16 { // 8 bytes = 16 hex chars
		t.Errorf("Expected 16 character hash, got %d: %s", len(hash1), hash1)
	}
}

func TestCacheRoot(t *testing.T) {
	originalEnv := os.Getenv(CacheRootEnvVar)
	t.Cleanup(func() { _ = os.Setenv(CacheRootEnvVar, originalEnv) })

	_ = os.Setenv(CacheRootEnvVar, "/custom/cache")
	if got := CacheRoot("/configured"); got != "/custom/cache" {
		t.Errorf("env override should win, got %s", got)
	}

	_ = os.Unsetenv(CacheRootEnvVar)
	if got := CacheRoot("/configured"); got != "/configured" {
		t.Errorf("configured value should win without env, got %s", got)
	}

	got := CacheRoot("")
	if !strings.HasSuffix(got, DefaultCacheDirName) {
		t.Errorf("default cache root should end with %s, got %s", DefaultCacheDirName, got)
	}
}

func TestJoinRepoPath(t *testing.T) {
	got := JoinRepoPath("/repo", "src/a.ts")
	want := filepath.Join("/repo", "src", "a.ts")
	if got != want {
		t.Errorf("JoinRepoPath = %q, want %q", got, want)
	}
}
