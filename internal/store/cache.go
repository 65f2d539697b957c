// Package store holds the durable local state of the engine: the per-place
// offline forecast cache, the saved-places list, and unit preferences.
package store

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

// FileCache is a durable key-value store mapping place display name to the
// last-known raw forecast payload, one file per place. There is no eviction:
// growth is bounded in practice by the number of saved places.
type FileCache struct {
	dir    string
	logger *slog.Logger
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, logger *slog.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, logger: logger.With("component", "store.cache")}, nil
}

// Save overwrites the cached payload for a place name. I/O failures are
// logged and reported but are non-fatal to callers by contract.
func (c *FileCache) Save(placeName string, payload []byte) error {
	if err := os.WriteFile(c.path(placeName), payload, 0o644); err != nil {
		c.logger.Warn("cache write failed", "place", placeName, "error", err)
		return err
	}
	return nil
}

// Load returns the stored payload, or ok == false if the place was never
// saved or the file is unreadable. It never raises to the caller.
func (c *FileCache) Load(placeName string) ([]byte, bool) {
	payload, err := os.ReadFile(c.path(placeName))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache read failed", "place", placeName, "error", err)
		}
		return nil, false
	}
	return payload, true
}

// path escapes the display name so geocoder output (commas, slashes,
// spaces) stays a single safe filename.
func (c *FileCache) path(placeName string) string {
	return filepath.Join(c.dir, url.PathEscape(placeName)+".json")
}
