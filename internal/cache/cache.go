// Package cache implements the content-addressed build cache (§4.7): a
// compilation's inputs — ordered source-file hashes, variant selections,
// optional args, output format, and tool version — hash to a cache key,
// under which the rendered output is stored on disk, sharded by the
// key's first two hex characters, written atomically via a temp file
// plus rename. Grounded on original_source/src/cache/mod.rs and, for the
// filesystem discipline, the teacher's internal/module.Loader caching.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Key is a cache key computed from compilation inputs (§4.7).
type Key struct {
	Hash string
}

// Compute hashes sourceHashes (in topological order, one per file in the
// dependency closure), the sorted variant selections, an optional args
// hash, the output format, and the tool version into a single key.
// Changing any input, or the order of sourceHashes, changes the key.
func Compute(sourceHashes []string, variants map[string]string, argsHash string, format, toolVersion string) Key {
	h := sha256.New()

	for _, sh := range sourceHashes {
		h.Write([]byte(sh))
		h.Write([]byte{0})
	}

	keys := make([]string, 0, len(variants))
	for k := range variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte("variant:"))
		h.Write([]byte(k))
		h.Write([]byte("="))
		h.Write([]byte(variants[k]))
		h.Write([]byte{0})
	}

	if argsHash != "" {
		h.Write([]byte("args:"))
		h.Write([]byte(argsHash))
		h.Write([]byte{0})
	}

	h.Write([]byte("format:"))
	h.Write([]byte(format))
	h.Write([]byte{0})

	h.Write([]byte("version:"))
	h.Write([]byte(toolVersion))

	return Key{Hash: hex.EncodeToString(h.Sum(nil))}
}

// HashString returns the hex-encoded SHA-256 digest of s, used to hash
// individual source files and serialized args before calling Compute.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Entry is a cached compilation result.
type Entry struct {
	Output      string `json:"output"`
	Format      string `json:"format"`
	SourcePath  string `json:"source_path,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	ToolVersion string `json:"hone_version"`
}

// NewEntry builds an Entry stamped with the current time.
func NewEntry(output, format, sourcePath, toolVersion string) Entry {
	return Entry{
		Output:      output,
		Format:      format,
		SourcePath:  sourcePath,
		Timestamp:   time.Now().Unix(),
		ToolVersion: toolVersion,
	}
}

// Store is a filesystem-backed build cache rooted at a directory, shared
// across compiles by the CLI; each compile_* driver call may bypass it
// (e.g. allow_env, stdin input, multi-file output) per §4.7.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating nothing until Put is
// first called.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the default cache root: $XDG_CACHE_HOME/hone/v1, or
// $HOME/.cache/hone/v1 if XDG_CACHE_HOME is unset.
func DefaultDir() (string, bool) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "hone", "v1"), true
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache", "hone", "v1"), true
	}
	return "", false
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) entryPath(hash string) string {
	prefix := hash
	if len(prefix) > 2 {
		prefix = hash[:2]
	}
	return filepath.Join(s.dir, prefix, hash+".json")
}

// Get looks up a cached entry by key; ok is false on a miss or a corrupt
// entry.
func (s *Store) Get(key Key) (Entry, bool) {
	data, err := os.ReadFile(s.entryPath(key.Hash))
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

// Put stores entry under key, writing via a temp file in the same
// directory and renaming into place so readers never observe a partial
// write.
func (s *Store) Put(key Key, entry Entry) error {
	path := s.entryPath(key.Hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: encode entry: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: rename entry: %w", err)
	}
	return nil
}

// Clean removes every cached entry, returning the count removed.
func (s *Store) Clean() (int, error) {
	return s.cleanFiltered(nil)
}

// CleanOlderThan removes cached entries whose file modification time is
// older than maxAge, returning the count removed.
func (s *Store) CleanOlderThan(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	return s.cleanFiltered(&cutoff)
}

func (s *Store) cleanFiltered(before *time.Time) (int, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return 0, nil
	}
	count := 0
	if err := cleanRecursive(s.dir, before, &count); err != nil {
		return count, fmt.Errorf("cache: clean: %w", err)
	}
	return count, nil
}

func cleanRecursive(dir string, before *time.Time, count *int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := cleanRecursive(path, before, count); err != nil {
				return err
			}
			if remaining, err := os.ReadDir(path); err == nil && len(remaining) == 0 {
				os.Remove(path)
			}
			continue
		}
		if filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		remove := before == nil
		if before != nil {
			if info, err := entry.Info(); err == nil {
				remove = info.ModTime().Before(*before)
			}
		}
		if remove && os.Remove(path) == nil {
			*count++
		}
	}
	return nil
}

// ParseDuration parses a duration string like "7d", "24h", "30m", "60s"
// (bare digits default to seconds) used by `hone cache clean --older-than`.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	unit := byte('s')
	numPart := s
	switch s[len(s)-1] {
	case 'd', 'h', 'm', 's':
		unit = s[len(s)-1]
		numPart = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'm':
		return time.Duration(n) * time.Minute, true
	default:
		return time.Duration(n) * time.Second, true
	}
}
