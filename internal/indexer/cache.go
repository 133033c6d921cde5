package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const resultCacheVersion = 1

// resultCacheEntry is the last run's result and the inputs it was computed
// from. It is reused only when every input matches.
type resultCacheEntry struct {
	Version int               `json:"version"`
	Key     string            `json:"key"`
	Files   map[string]string `json:"files"`
	Result  LintResult        `json:"result"`
}

// Matches reports whether the entry was computed with the same settings
// from exactly the given file contents.
func (e *resultCacheEntry) Matches(key string, hashes map[string]string) bool {
	if e == nil || e.Version != resultCacheVersion || e.Key != key {
		return false
	}
	if len(e.Files) != len(hashes) {
		return false
	}
	for f, h := range hashes {
		if e.Files[f] != h {
			return false
		}
	}
	return true
}

type resultCache struct {
	dir string
	key string
}

func (c *resultCache) path() string {
	return filepath.Join(c.dir, "result_cache.json")
}

// Load returns the stored entry, or nil when there is none or it was
// written by another cache version.
func (c *resultCache) Load() (*resultCacheEntry, error) {
	data, err := os.ReadFile(c.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read result cache: %w", err)
	}
	var entry resultCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parse result cache: %w", err)
	}
	if entry.Version != resultCacheVersion {
		return nil, nil
	}
	return &entry, nil
}

func (c *resultCache) Save(entry resultCacheEntry) error {
	if err := writeJSONAtomic(c.path(), entry); err != nil {
		return fmt.Errorf("write result cache: %w", err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
