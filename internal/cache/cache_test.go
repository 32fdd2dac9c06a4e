package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"tsel/internal/logging"
)

func newTestStore(t *testing.T, disabled bool) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Format: logging.HumanFormat})
	return NewStore(root, disabled, logger), root
}

func existingPaths(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var out []string
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, "t"+string(rune('a'+i))+".test.ts")
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	return out
}

func TestCacheRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, false)
	paths := existingPaths(t, 2)
	key := Key("abcd1234", "deadbeef0123", Fingerprint([]string{"/b", "/a"}))

	if _, ok := store.Get("abcd1234", key); ok {
		t.Fatal("expected miss on empty cache")
	}
	store.Put("abcd1234", key, paths)
	got, ok := store.Get("abcd1234", key)
	if !ok || !reflect.DeepEqual(got, paths) {
		t.Fatalf("Get = %v, %v; want %v", got, ok, paths)
	}
}

func TestCacheSelfHealsOnMissingPath(t *testing.T) {
	store, _ := newTestStore(t, false)
	paths := existingPaths(t, 2)
	key := Key("r", "c", "f")

	store.Put("r", key, paths)
	if err := os.Remove(paths[1]); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("r", key); ok {
		t.Fatal("expected miss after cached path deleted")
	}
}

func TestCacheBypass(t *testing.T) {
	store, root := newTestStore(t, true)
	paths := existingPaths(t, 1)

	store.Put("r", "k", paths)
	if _, ok := store.Get("r", "k"); ok {
		t.Fatal("disabled store returned a hit")
	}
	if _, err := os.Stat(filepath.Join(root, "r.json")); !os.IsNotExist(err) {
		t.Fatal("disabled store wrote to disk")
	}
}

func TestCacheKeepsOtherEntries(t *testing.T) {
	store, root := newTestStore(t, false)
	a := existingPaths(t, 1)
	b := existingPaths(t, 1)

	store.Put("r", "k1", a)
	store.Put("r", "k2", b)

	data, err := os.ReadFile(filepath.Join(root, "r.json"))
	if err != nil {
		t.Fatal(err)
	}
	entries := make(map[string][]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("cache file is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both entries persisted, got %v", entries)
	}
}

func TestCacheCorruptFileMisses(t *testing.T) {
	store, root := newTestStore(t, false)
	if err := os.WriteFile(filepath.Join(root, "r.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("r", "k"); ok {
		t.Fatal("corrupt file produced a hit")
	}
	// A Put over the corrupt file recovers it.
	paths := existingPaths(t, 1)
	store.Put("r", "k", paths)
	if got, ok := store.Get("r", "k"); !ok || !reflect.DeepEqual(got, paths) {
		t.Fatalf("recovery Put failed: %v, %v", got, ok)
	}
}

func TestCachePutConcurrentWritersParseable(t *testing.T) {
	store, root := newTestStore(t, false)
	paths := existingPaths(t, 3)

	// Racing writers may lose entries to last-writer-wins, but the rename
	// pattern must never leave a torn or unparseable file behind.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Put("r", "k"+strconv.Itoa(i), paths)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(root, "r.json"))
	if err != nil {
		t.Fatal(err)
	}
	entries := make(map[string][]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("cache file is not valid JSON after concurrent writes: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no entry survived concurrent writes")
	}
	for k, v := range entries {
		if !reflect.DeepEqual(v, paths) {
			t.Errorf("entry %s = %v, want %v", k, v, paths)
		}
	}
}

func TestFingerprintOrderIndependent(t *testing.T) {
	a := Fingerprint([]string{"/x", "/y"})
	b := Fingerprint([]string{"/y", "/x"})
	if a != b {
		t.Errorf("fingerprint depends on seed order: %s vs %s", a, b)
	}
	if a == Fingerprint([]string{"/x"}) {
		t.Error("different seed sets share a fingerprint")
	}
}
