// Package cache provides an in-memory decode cache for sourcemap files,
// keyed by content hash rather than by path+mtime so editors that touch
// mtime without touching bytes (many do, on save) don't force a redecode.
package cache

import (
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/MadAppGang/sourcemap/internal/logging"
	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

// entry pairs a decoded map with the content hash it was decoded from, so
// Get can tell a genuine cache hit from a path whose file changed.
type entry struct {
	hash   uint64
	parsed *sourcemap.DecodedMap
}

// DecodeCache caches decoded sourcemaps by path, re-decoding only when the
// file's content hash no longer matches what's cached. It follows the same
// RWMutex-then-double-checked-lock shape a read-through cache typically
// uses: an optimistic read lock for the common hit path, and a write lock
// that re-checks before doing the expensive work, so two goroutines racing
// on a cold path don't both decode the same file.
type DecodeCache struct {
	mu     sync.RWMutex
	maps   map[string]entry
	logger logging.Logger
}

// New creates an empty DecodeCache. Callers must supply a real Logger;
// the CLI always constructs one at startup.
func New(logger logging.Logger) *DecodeCache {
	return &DecodeCache{
		maps:   make(map[string]entry),
		logger: logger,
	}
}

// Get returns the decoded sourcemap at path, reading and decoding it from
// disk only if the cache is empty for path or the file's bytes have
// changed since the cached entry was produced.
func (c *DecodeCache) Get(path string) (*sourcemap.DecodedMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	hash := xxhash.Sum64(data)

	c.mu.RLock()
	if e, ok := c.maps[path]; ok && e.hash == hash {
		c.mu.RUnlock()
		c.logger.Debugf("sourcemap cache hit: %s", path)
		return e.parsed, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the write lock: another goroutine may have already
	// decoded this exact content between our RUnlock and Lock.
	if e, ok := c.maps[path]; ok && e.hash == hash {
		return e.parsed, nil
	}

	dm, err := sourcemap.DecodeSlice(data)
	if err != nil {
		return nil, err
	}
	c.maps[path] = entry{hash: hash, parsed: dm}
	c.logger.Infof("sourcemap decoded and cached: %s", path)
	return dm, nil
}

// Invalidate drops any cached entry for path, forcing the next Get to
// re-read and re-decode regardless of content hash.
func (c *DecodeCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.maps[path]; ok {
		delete(c.maps, path)
		c.logger.Debugf("sourcemap cache invalidated: %s", path)
	}
}

// InvalidateAll clears every cached entry.
func (c *DecodeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := len(c.maps)
	c.maps = make(map[string]entry)
	c.logger.Infof("sourcemap cache cleared (%d entries)", count)
}

// Size returns the number of cached entries.
func (c *DecodeCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.maps)
}
