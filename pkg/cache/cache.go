// Package cache stores rendered artifacts so that re-rendering an unchanged
// dataset with unchanged options skips the simulation.
//
// Layouts are deterministic: the same dataset, layout parameters and graph
// size settle to the same positions, so an artifact is fully identified by
// a hash of those inputs and the output options. See [Key].
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long artifacts stay valid in the file cache.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Dir returns $XDG_CACHE_HOME/topoview, falling back to ~/.cache/topoview.
func Dir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "topoview")
}
