package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entry is the on-disk form of one cached answer.
type entry struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache is a TTL-bounded, file-per-key answer cache.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Key returns the cache key for a query: the SHA-256 of the exact text.
// No normalization is applied, so trivially rephrased queries miss.
func Key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached response for query, if present and fresh. An
// expired or corrupt entry is deleted and reads as a miss.
func (c *Cache) Get(query string) (string, bool) {
	path := c.path(Key(query))

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Warn("removing corrupt cache entry", "path", path, "error", err)
		_ = os.Remove(path)
		return "", false
	}

	if c.now().Sub(e.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return "", false
	}

	return e.Response, true
}

// Set stores a response for query, overwriting any previous entry.
func (c *Cache) Set(query, response string) error {
	e := entry{Query: query, Response: response, Timestamp: c.now()}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(Key(query)), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// ClearExpired sweeps the cache directory and removes every stale or
// unreadable entry, returning the number removed.
func (c *Cache) ClearExpired() (int, error) {
	files, err := c.entryFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		stale := json.Unmarshal(data, &e) != nil || c.now().Sub(e.Timestamp) > c.ttl
		if stale {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// ClearAll removes every entry, returning the number removed.
func (c *Cache) ClearAll() (int, error) {
	files, err := c.entryFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range files {
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats summarizes the cache directory.
type Stats struct {
	Entries    int    `json:"entries"`
	Expired    int    `json:"expired"`
	TotalBytes int64  `json:"total_bytes"`
	Location   string `json:"location"`
}

// Statistics counts entries, how many of them are already stale, and the
// bytes they occupy, along with where the cache lives on disk.
func (c *Cache) Statistics() (Stats, error) {
	files, err := c.entryFiles()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Location: c.dir}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if json.Unmarshal(data, &e) != nil || c.now().Sub(e.Timestamp) > c.ttl {
			stats.Expired++
		}
	}
	return stats, nil
}

func (c *Cache) entryFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(c.dir, de.Name()))
	}
	return files, nil
}
