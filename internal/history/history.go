// Package history persists per-directory navigation state across runs:
// where the user was rooted and what was selected when they left.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

// Entry remembers where a session rooted on a directory ended up.
type Entry struct {
	// Start is the directory the session was launched on.
	Start string `json:"start"`

	// Root is the tree root when the session ended (focus may have
	// moved it away from Start).
	Root string `json:"root"`

	// Selection is the selected path when the session ended.
	Selection string `json:"selection"`

	UpdatedAt time.Time `json:"updated_at"`
}

// file is the persisted shape of the history store.
type file struct {
	Entries []Entry `json:"entries"`
}

// Store reads and writes the history file. The zero value is not
// usable; use New.
type Store struct {
	path       string
	maxEntries int
}

// New returns a store over the default history location.
func New(maxEntries int) *Store {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewAtPath(filepath.Join(cacheDir, "canopy", "history.json"), maxEntries)
}

// NewAtPath returns a store over an explicit file, for tests and
// alternate layouts.
func NewAtPath(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &Store{path: path, maxEntries: maxEntries}
}

// key canonicalizes a start directory so symlinked spellings of the
// same directory share an entry.
func key(start string) string {
	if resolved, err := filepath.EvalSymlinks(start); err == nil {
		start = resolved
	}
	sum := sha256.Sum256([]byte(start))
	return hex.EncodeToString(sum[:8])
}

// Lookup returns the remembered entry for a start directory, or nil.
func (s *Store) Lookup(start string) *Entry {
	// Shared (read) lock - blocks if an exclusive lock is held
	fileLock := flock.New(s.path + ".lock")
	if err := fileLock.RLock(); err != nil {
		return nil
	}
	defer fileLock.Unlock()

	f, err := s.read()
	if err != nil {
		return nil
	}
	k := key(start)
	for i := range f.Entries {
		if key(f.Entries[i].Start) == k {
			return &f.Entries[i]
		}
	}
	return nil
}

// Resume returns the root and selection to restore for a start
// directory. The remembered root is honored only while it still exists
// as a directory; otherwise the session restarts at start with no
// selection, since the remembered selection belongs to the lost root.
func (s *Store) Resume(start string) (root, selection string) {
	e := s.Lookup(start)
	if e == nil {
		return start, ""
	}
	if info, err := os.Stat(e.Root); err != nil || !info.IsDir() {
		return start, ""
	}
	return e.Root, e.Selection
}

// Record upserts the entry for a start directory and prunes the store
// to its size bound, oldest entries first.
func (s *Store) Record(e Entry) error {
	e.UpdatedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	// Exclusive lock - blocks until the lock is available
	fileLock := flock.New(s.path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return err
	}
	defer fileLock.Unlock()

	f, err := s.read()
	if err != nil {
		f = &file{}
	}

	k := key(e.Start)
	replaced := false
	for i := range f.Entries {
		if key(f.Entries[i].Start) == k {
			f.Entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		f.Entries = append(f.Entries, e)
	}

	if len(f.Entries) > s.maxEntries {
		sort.Slice(f.Entries, func(i, j int) bool {
			return f.Entries[i].UpdatedAt.After(f.Entries[j].UpdatedAt)
		})
		f.Entries = f.Entries[:s.maxEntries]
	}

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	// Write atomically: write to temp file then rename
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

func (s *Store) read() (*file, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
