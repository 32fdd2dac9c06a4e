package routes

import (
	"testing"
)

func insertAll(t *Trie, routes ...Route) {
	for _, r := range routes {
		t.Insert(r)
	}
}

func singleMatch(t *testing.T, trie *Trie, method string, path string) Route {
	t.Helper()
	got := trie.Match(method, path)
	if len(got) != 1 {
		t.Fatalf("Match(%s %s) = %v, want exactly one route", method, path, got)
	}
	return got[0]
}

func TestTrieLiteralBeforeParamBeforeSplat(t *testing.T) {
	trie := NewTrie()
	insertAll(trie,
		Route{Method: "GET", Path: "/users/me", File: "me.ts"},
		Route{Method: "GET", Path: "/users/:id", File: "byid.ts"},
		Route{Method: "GET", Path: "/users/*", File: "splat.ts"},
	)

	if got := singleMatch(t, trie, "GET", "/users/me"); got.File != "me.ts" {
		t.Errorf("literal match went to %s", got.File)
	}
	if got := singleMatch(t, trie, "GET", "/users/42"); got.File != "byid.ts" {
		t.Errorf("param match went to %s", got.File)
	}
	if got := singleMatch(t, trie, "GET", "/users/42/posts"); got.File != "splat.ts" {
		t.Errorf("splat match went to %s", got.File)
	}
}

func TestTrieLongestConsumptionWins(t *testing.T) {
	trie := NewTrie()
	insertAll(trie,
		Route{Method: "GET", Path: "/api/*", File: "catchall.ts"},
		Route{Method: "GET", Path: "/api/v1/users", File: "users.ts"},
	)

	if got := singleMatch(t, trie, "GET", "/api/v1/users"); got.File != "users.ts" {
		t.Errorf("deep literal lost to catch-all: %s", got.File)
	}
	if got := singleMatch(t, trie, "GET", "/api/v1/other"); got.File != "catchall.ts" {
		t.Errorf("catch-all expected, got %s", got.File)
	}
}

func TestTrieTiePrefersLiteralSpecificity(t *testing.T) {
	trie := NewTrie()
	insertAll(trie,
		Route{Method: "GET", Path: "/a/:x/c", File: "onewild.ts"},
		Route{Method: "GET", Path: "/a/:x/:y", File: "twowild.ts"},
	)

	if got := singleMatch(t, trie, "GET", "/a/b/c"); got.File != "onewild.ts" {
		t.Errorf("tie broke toward %s, want the branch with fewer wildcards", got.File)
	}
}

func TestTrieMethodAndWildcardMethod(t *testing.T) {
	trie := NewTrie()
	insertAll(trie,
		Route{Method: "POST", Path: "/things", File: "create.ts"},
		Route{Method: WildcardMethod, Path: "/things", File: "any.ts"},
	)

	got := trie.Match("POST", "/things")
	if len(got) != 2 {
		t.Fatalf("expected method + wildcard handlers, got %v", got)
	}
	if got := singleMatch(t, trie, "DELETE", "/things"); got.File != "any.ts" {
		t.Errorf("wildcard method match went to %s", got.File)
	}
	if got := trie.Match("GET", "/missing"); got != nil {
		t.Errorf("expected no match, got %v", got)
	}
}
