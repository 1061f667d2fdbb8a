package ngdp

import (
	"fmt"
	"os"
	"path/filepath"
)

// Cache is a disk-backed, content-addressed blob store. Entries live at
// {basedir}/{namespace}/{key} where key is a content hash (or a derived
// name such as "{hash}.index") and namespace is one of the NGDP buckets
// (cdns, config, data, patch). An entry, once written, is immutable: the
// same key always names the same bytes.
type Cache struct {
	basedir string
}

// NewCache creates a cache rooted at basedir. An empty basedir selects the
// per-user default: $XDG_CACHE_HOME/ngdp, falling back to ~/.cache/ngdp.
func NewCache(basedir string) *Cache {
	if basedir == "" {
		basedir = defaultCacheDir()
	}
	return &Cache{basedir: basedir}
}

func defaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ngdp")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache")
	}
	return filepath.Join(home, ".cache", "ngdp")
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.basedir
}

// Contains reports whether a blob has been written for (namespace, key).
func (c *Cache) Contains(namespace, key string) bool {
	_, err := os.Stat(filepath.Join(c.basedir, namespace, key))
	return err == nil
}

// Read returns the stored blob for (namespace, key). A key that was never
// written fails wrapping ErrNotCached.
func (c *Cache) Read(namespace, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.basedir, namespace, key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/%s: %w", namespace, key, ErrNotCached)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return data, nil
}

// Write stores data under (namespace, key), creating the namespace
// directory if needed. The blob is written to a temp file and renamed into
// place so a concurrent reader never observes a partial entry; concurrent
// writers of the same content-addressed key resolve to first-writer-wins.
func (c *Cache) Write(namespace, key string, data []byte) error {
	dir := filepath.Join(c.basedir, namespace)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, key+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}
