// Package cache persists computed selections per repository: one JSON file
// per repo, keyed by repository identity, commit, and request fingerprint.
// Everything here is best-effort; a broken cache only costs a recompute.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"tsel/internal/logging"
)

// Store reads and writes one cache root directory.
type Store struct {
	root     string
	disabled bool
	logger   *logging.Logger
}

// NewStore opens a cache rooted at root. When disabled, Get always misses
// and Put is a no-op, leaving the persisted cache untouched for other
// processes.
func NewStore(root string, disabled bool, logger *logging.Logger) *Store {
	return &Store{root: root, disabled: disabled, logger: logger}
}

// Key composes the cache key for one selection request.
func Key(repoKey string, shortCommit string, fingerprint string) string {
	return repoKey + ":" + shortCommit + ":" + fingerprint
}

// Fingerprint derives a stable digest from the request's seed paths:
// sorted copy, newline-joined, truncated SHA256.
func Fingerprint(seeds []string) string {
	sorted := append([]string(nil), seeds...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return fmt.Sprintf("%x", sum[:8])
}

// Get returns the cached path list for key, re-validating that every
// cached path still exists. Any missing path forces a miss so deletions
// and renames self-heal.
func (s *Store) Get(repoKey string, key string) ([]string, bool) {
	if s.disabled {
		return nil, false
	}
	entries, err := s.readRepo(repoKey)
	if err != nil {
		return nil, false
	}
	paths, ok := entries[key]
	if !ok {
		return nil, false
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			s.logger.Debug("cache entry stale", map[string]interface{}{
				"key":     key,
				"missing": p,
			})
			return nil, false
		}
	}
	return paths, true
}

// Put records the path list for key. The repo file is rewritten through a
// temporary file and renamed into place so concurrent readers never see a
// partial JSON document. Failures are logged and swallowed.
func (s *Store) Put(repoKey string, key string, paths []string) {
	if s.disabled {
		return
	}
	if err := s.write(repoKey, key, paths); err != nil {
		s.logger.Debug("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (s *Store) repoFile(repoKey string) string {
	return filepath.Join(s.root, repoKey+".json")
}

func (s *Store) readRepo(repoKey string) (map[string][]string, error) {
	data, err := os.ReadFile(s.repoFile(repoKey))
	if err != nil {
		return nil, err
	}
	entries := make(map[string][]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) write(repoKey string, key string, paths []string) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("create cache root: %w", err)
	}

	entries, err := s.readRepo(repoKey)
	if err != nil {
		entries = make(map[string][]string)
	}
	entries[key] = paths

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := s.repoFile(repoKey) + "." + uuid.New().String() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := os.Rename(tmp, s.repoFile(repoKey)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
