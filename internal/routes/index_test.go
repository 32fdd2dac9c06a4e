package routes

import (
	"os"
	"path/filepath"
	"testing"

	"tsel/internal/ignore"
	"tsel/internal/lang"
	"tsel/internal/logging"
)

func scanFixture(t *testing.T, files map[string]string) (*Index, string) {
	t.Helper()
	repo := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(repo, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	js, err := lang.ForLanguage("javascript")
	if err != nil {
		t.Fatal(err)
	}
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Format: logging.HumanFormat})
	idx := NewScanner(js, repo, ignore.NewMatcher(repo, nil), logger).Scan()
	return idx, repo
}

func TestScanRegistrations(t *testing.T) {
	idx, repo := scanFixture(t, map[string]string{
		"src/app.ts": "import express from 'express';\n" +
			"const app = express();\n" +
			"app.get('/health', handler);\n" +
			"app.post('/users', create);\n" +
			"app.all('/admin', adminGate);\n",
	})

	owner := filepath.Join(repo, "src", "app.ts")
	routes := idx.RoutesOwnedBy(owner)
	if len(routes) != 3 {
		t.Fatalf("expected 3 routes, got %v", routes)
	}
	if routes[0].Path != "/admin" || routes[0].Method != WildcardMethod {
		t.Errorf("unexpected first route %v", routes[0])
	}
	if got := idx.Match("GET", "/health"); len(got) != 1 || got[0].File != owner {
		t.Errorf("Match(GET /health) = %v", got)
	}
	if got := idx.Match("DELETE", "/admin"); len(got) != 1 {
		t.Errorf("wildcard-method route missed: %v", got)
	}
}

func TestScanMountComposition(t *testing.T) {
	idx, repo := scanFixture(t, map[string]string{
		"src/app.ts": "import { userRouter as users } from './users';\n" +
			"import api from './api';\n" +
			"app.use('/api', api);\n" +
			"app.use('/users', users);\n",
		"src/api.ts": "import v1 from './v1/router';\n" +
			"api.use('/v1', v1);\n",
		"src/v1/router.ts": "router.get('/items/:id', handler);\n",
		"src/users.ts":     "userRouter.get('/me', me);\n",
	})

	v1 := filepath.Join(repo, "src", "v1", "router.ts")
	routes := idx.RoutesOwnedBy(v1)
	if len(routes) != 1 || routes[0].Path != "/api/v1/items/:id" {
		t.Fatalf("mount chain composed %v, want /api/v1/items/:id", routes)
	}

	users := filepath.Join(repo, "src", "users.ts")
	routes = idx.RoutesOwnedBy(users)
	if len(routes) != 1 || routes[0].Path != "/users/me" {
		t.Fatalf("renamed-binding mount composed %v, want /users/me", routes)
	}

	if got := idx.Match("GET", "/api/v1/items/42"); len(got) != 1 || got[0].File != v1 {
		t.Errorf("Match through mounts = %v", got)
	}
}

func TestScanRequireMount(t *testing.T) {
	idx, repo := scanFixture(t, map[string]string{
		"app.js":   "const sub = require('./sub');\napp.use('/sub', sub);\n",
		"sub.js":   "sub.get('/ping', handler);\n",
		"other.rs": "use crate::notjs;\n",
	})

	sub := filepath.Join(repo, "sub.js")
	routes := idx.RoutesOwnedBy(sub)
	if len(routes) != 1 || routes[0].Path != "/sub/ping" {
		t.Fatalf("require mount composed %v, want /sub/ping", routes)
	}
}

func TestScanMountCycleTerminates(t *testing.T) {
	idx, repo := scanFixture(t, map[string]string{
		"a.js": "const b = require('./b');\na.use('/a', b);\na.get('/root', h);\n",
		"b.js": "const a = require('./a');\nb.use('/b', a);\n",
	})

	owner := filepath.Join(repo, "a.js")
	routes := idx.RoutesOwnedBy(owner)
	if len(routes) == 0 {
		t.Fatal("cycle swallowed all routes")
	}
	for _, r := range routes {
		if len(r.Path) > 64 {
			t.Fatalf("cycle inflated path %q", r.Path)
		}
	}
}

func TestScanNonJavaScriptLanguage(t *testing.T) {
	repo := t.TempDir()
	rs, err := lang.ForLanguage("rust")
	if err != nil {
		t.Fatal(err)
	}
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Format: logging.HumanFormat})
	idx := NewScanner(rs, repo, ignore.NewMatcher(repo, nil), logger).Scan()
	if all := idx.All(); len(all) != 0 {
		t.Errorf("expected empty index, got %v", all)
	}
}
