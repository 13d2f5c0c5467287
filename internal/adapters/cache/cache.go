// Package cache implements the bounded, time-limited content cache used by
// the memory bank reader.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"

	"memorybank/internal/ports"
)

const (
	DefaultMaxSize = 100
	DefaultMaxAge  = 5 * time.Minute
)

// Entry is one cached document
type Entry struct {
	Content      string
	Version      int64
	LastAccessed time.Time
	AccessCount  int
}

// Stats is a snapshot of cache counters
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Reloads     int64
	TotalFiles  int64
	HitRate     float64
	CurrentSize int
	MaxSize     int
	LastReset   time.Time
}

// Options configures a Cache
type Options struct {
	MaxSize int
	MaxAge  time.Duration
	Now     func() time.Time
	Logger  *zap.Logger
}

// Cache is a strict LRU keyed by absolute path. Entries are dropped when
// their version no longer matches the caller's, or once they have not been
// accessed for MaxAge.
//
// All methods are safe for concurrent use, but two writers racing on the
// same key must be sequenced by the caller.
type Cache struct {
	mu      sync.Mutex
	lru     *simplelru.LRU[string, *Entry]
	maxSize int
	maxAge  time.Duration
	now     func() time.Time
	logger  *zap.Logger

	hits       int64
	misses     int64
	evictions  int64
	reloads    int64
	totalFiles int64
	lastReset  time.Time
}

// Ensure Cache implements ContentCache
var _ ports.ContentCache = (*Cache)(nil)

// New creates a cache, applying defaults for zero options
func New(opts Options) *Cache {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	// Capacity is enforced by Set before insertion, so the LRU's own
	// eviction never fires. The size can only be rejected when <= 0.
	l, _ := simplelru.NewLRU[string, *Entry](opts.MaxSize, nil)

	return &Cache{
		lru:       l,
		maxSize:   opts.MaxSize,
		maxAge:    opts.MaxAge,
		now:       opts.Now,
		logger:    opts.Logger,
		lastReset: opts.Now(),
	}
}

// Get returns the content cached for key if it was stored with version and
// has not expired. Stale or expired entries are removed.
func (c *Cache) Get(key string, version int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	if !ok {
		c.misses++
		return "", false
	}

	now := c.now()
	if e.Version != version {
		c.lru.Remove(key)
		c.misses++
		c.logger.Debug("cache entry stale", zap.String("key", key),
			zap.Int64("cached", e.Version), zap.Int64("current", version))
		return "", false
	}
	if c.expired(e, now) {
		c.lru.Remove(key)
		c.misses++
		c.evictions++
		c.logger.Debug("cache entry expired", zap.String("key", key))
		return "", false
	}

	c.lru.Get(key)
	e.LastAccessed = now
	e.AccessCount++
	c.hits++
	return e.Content, true
}

// Set stores content for key. A new key on a full cache first evicts the
// least recently accessed entry.
func (c *Cache) Set(key, content string, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.lru.Peek(key); ok {
		e.Content = content
		e.Version = version
		e.LastAccessed = now
		c.lru.Get(key)
		c.reloads++
		return
	}

	if c.lru.Len() >= c.maxSize {
		if oldest, _, ok := c.lru.RemoveOldest(); ok {
			c.evictions++
			c.logger.Debug("cache entry evicted", zap.String("key", oldest))
		}
	}

	c.lru.Add(key, &Entry{
		Content:      content,
		Version:      version,
		LastAccessed: now,
	})
	c.totalFiles++
}

// Peek returns a copy of the entry for key without touching its recency
func (c *Cache) Peek(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Invalidate removes key
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// InvalidateAll removes every entry
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// SweepExpired removes every expired entry and returns how many were removed
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && c.expired(e, now) {
			c.lru.Remove(key)
			removed++
		}
	}
	c.evictions += int64(removed)
	return removed
}

// StartJanitor sweeps expired entries every interval until ctx is done
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.maxAge
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.SweepExpired(); n > 0 {
					c.logger.Debug("swept expired cache entries", zap.Int("removed", n))
				}
			}
		}
	}()
}

// Keys returns the cached keys from least to most recently accessed
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a snapshot of the counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Reloads:     c.reloads,
		TotalFiles:  c.totalFiles,
		HitRate:     rate,
		CurrentSize: c.lru.Len(),
		MaxSize:     c.maxSize,
		LastReset:   c.lastReset,
	}
}

// ResetStats zeroes the counters; cached entries are kept
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits, c.misses, c.evictions, c.reloads, c.totalFiles = 0, 0, 0, 0, 0
	c.lastReset = c.now()
}

func (c *Cache) expired(e *Entry, now time.Time) bool {
	return now.Sub(e.LastAccessed) > c.maxAge
}
