package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatcherBuiltins(t *testing.T) {
	m := NewMatcher(t.TempDir(), nil)

	for _, dir := range []string{".git", "node_modules", "target", "dist", "coverage", "src/vendor"} {
		if !m.SkipDir(dir) {
			t.Errorf("expected SkipDir(%s)", dir)
		}
	}
	if m.SkipDir("src") || m.SkipDir(".") {
		t.Error("regular directories should not be skipped")
	}
	if !m.Ignored("node_modules/dep/index.js") {
		t.Error("expected file under node_modules to be ignored")
	}
	if m.Ignored("src/main.ts") {
		t.Error("regular file ignored")
	}
}

func TestMatcherGitignore(t *testing.T) {
	repo := t.TempDir()
	content := "*.generated.ts\ntmp/\n"
	if err := os.WriteFile(filepath.Join(repo, ".gitignore"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewMatcher(repo, nil)

	if !m.Ignored("src/schema.generated.ts") {
		t.Error("expected gitignore pattern to match")
	}
	if !m.SkipDir("tmp") {
		t.Error("expected gitignored directory to be skipped")
	}
	if m.Ignored("src/schema.ts") {
		t.Error("unmatched file ignored")
	}
}

func TestMatcherCallerGlobs(t *testing.T) {
	m := NewMatcher(t.TempDir(), []string{"fixtures/**", "**/*.snap.ts"})

	if !m.Ignored("fixtures/big/blob.ts") {
		t.Error("expected caller glob to match")
	}
	if !m.Ignored("src/deep/view.snap.ts") {
		t.Error("expected recursive caller glob to match")
	}
	if !m.SkipDir("fixtures/big") {
		t.Error("expected caller glob to prune directory")
	}
	if m.Ignored("src/view.ts") {
		t.Error("unmatched file ignored")
	}
}
