// Package cache provides the content-fingerprint derivation and a persistent
// key/value store used to memoize remote call results.
//
// A Store holds a flat fingerprint->value mapping in memory and mirrors it to
// a single JSON file after every write. Two independent stores exist at
// runtime: one for language-model responses (value = response text) and one
// for synthesized audio (value = artifact path). Entries are never evicted,
// so both the mapping and its file grow with the number of distinct inputs.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CorruptError reports that an on-disk cache file exists but could not be
// decoded. Recovery is left to the operator: the file must be repaired or
// removed before the process can start.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt cache file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store is a persistent fingerprint->value cache. All methods are safe for
// concurrent use; writes are serialized so two in-flight pipelines cannot
// interleave persists of the backing file.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]string
}

// Open loads the store backed by the file at path. A missing file yields an
// empty store; a present but undecodable file is a *CorruptError.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]string),
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if err := json.Unmarshal(b, &s.entries); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string { return s.path }

// Lookup returns the value stored under key, if any. It never touches the
// backing file.
func (s *Store) Lookup(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Put records key->value and synchronously persists the whole mapping.
// Last write wins. The in-memory entry is kept even if the persist fails, so
// the caller still benefits from the cache for the rest of the process.
func (s *Store) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return s.persistLocked()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persistLocked writes the mapping to a temp file and renames it into place,
// so a crash mid-write cannot leave a torn file behind. Callers hold s.mu.
func (s *Store) persistLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	b, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
