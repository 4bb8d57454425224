package route

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of planned legs kept by NewCache callers
// that have no configured size.
const DefaultCacheSize = 512

type cachedResult struct {
	path  Path
	found bool
}

// Cache memoizes planner results keyed by the complete request, obstacle
// bitmap included. Only identical queries share a result.
type Cache struct {
	entries   *lru.Cache[Request, cachedResult]
	hits      int64
	misses    int64
	evictions int64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Size      int     `json:"size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// NewCache creates an LRU result cache holding up to size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}

	c := &Cache{}
	entries, err := lru.NewWithEvict[Request, cachedResult](size, func(Request, cachedResult) {
		atomic.AddInt64(&c.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// MustCache is like NewCache but panics on an invalid size. It is meant for
// constant sizes such as DefaultCacheSize.
func MustCache(size int) *Cache {
	c, err := NewCache(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns a copy of the cached path, whether the target was reachable,
// and whether the request was cached at all.
func (c *Cache) Get(req Request) (Path, bool, bool) {
	result, ok := c.entries.Get(req)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, false
	}
	atomic.AddInt64(&c.hits, 1)
	return clonePath(result.path), result.found, true
}

// Put stores a planner result.
func (c *Cache) Put(req Request, path Path, found bool) {
	c.entries.Add(req, cachedResult{path: clonePath(path), found: found})
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	stats := CacheStats{
		Size:      c.entries.Len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

func clonePath(p Path) Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
