package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(maxSize int, maxAge time.Duration) (*Cache, *fakeClock) {
	clock := newFakeClock()
	return New(Options{MaxSize: maxSize, MaxAge: maxAge, Now: clock.Now}), clock
}

func TestCache_HitAndVersionInvalidation(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	c.Set("/bank/a.md", "A", 1)

	_, ok := c.Get("/bank/a.md", 2)
	assert.False(t, ok, "different version must miss")
	assert.Equal(t, 0, c.Len(), "stale entry must be removed")

	c.Set("/bank/a.md", "A", 1)
	got, ok := c.Get("/bank/a.md", 1)
	require.True(t, ok)
	assert.Equal(t, "A", got)

	entry, ok := c.Peek("/bank/a.md")
	require.True(t, ok)
	assert.Equal(t, 1, entry.AccessCount)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("k", "v", 1)
	_, ok := c.Get("k", 1)
	require.True(t, ok)

	clock.Advance(time.Minute + time.Nanosecond)

	_, ok = c.Get("k", 1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be evicted, not kept")
}

func TestCache_AccessRefreshesTTL(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("k", "v", 1)
	clock.Advance(50 * time.Second)
	_, ok := c.Get("k", 1)
	require.True(t, ok)

	clock.Advance(50 * time.Second)
	_, ok = c.Get("k", 1)
	assert.True(t, ok, "TTL counts from the last access")
}

func TestCache_EvictsLeastRecentlyAccessed(t *testing.T) {
	c, _ := newTestCache(3, time.Hour)

	c.Set("a", "1", 1)
	c.Set("b", "2", 1)
	c.Set("c", "3", 1)

	// Reading "a" makes "b" the least recently accessed entry.
	_, ok := c.Get("a", 1)
	require.True(t, ok)

	c.Set("d", "4", 1)

	_, ok = c.Peek("b")
	assert.False(t, ok, "b should have been evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Peek(k)
		assert.True(t, ok, "%s should remain", k)
	}
	assert.Equal(t, int64(1), c.Stats().Evictions)
	assert.Equal(t, []string{"c", "a", "d"}, c.Keys())
}

func TestCache_BoundHoldsAfterOverflow(t *testing.T) {
	const maxSize, extra = 5, 4
	c, _ := newTestCache(maxSize, time.Hour)

	for i := 0; i < maxSize+extra; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v", 1)
		assert.LessOrEqual(t, c.Len(), maxSize)
	}

	for i := 0; i < extra; i++ {
		_, ok := c.Peek(fmt.Sprintf("k%d", i))
		assert.False(t, ok, "k%d should be evicted", i)
	}
	assert.Equal(t, int64(extra), c.Stats().Evictions)
}

func TestCache_UpdateCountsReload(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)

	c.Set("a", "1", 1)
	c.Set("a", "2", 2)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.TotalFiles)
	assert.Equal(t, int64(1), stats.Reloads)
	assert.Equal(t, int64(0), stats.Evictions)

	got, ok := c.Get("a", 2)
	require.True(t, ok)
	assert.Equal(t, "2", got)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)
	c.Set("a", "1", 1)
	c.Set("b", "2", 1)

	c.Invalidate("a")
	_, ok := c.Peek("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestCache_SweepExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("old1", "x", 1)
	c.Set("old2", "x", 1)
	clock.Advance(45 * time.Second)
	c.Set("fresh", "x", 1)
	clock.Advance(30 * time.Second)

	assert.Equal(t, 2, c.SweepExpired())
	assert.Equal(t, []string{"fresh"}, c.Keys())
	assert.Equal(t, 0, c.SweepExpired())
}

func TestCache_StatsAndReset(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)

	c.Set("a", "1", 1)
	c.Get("a", 1)
	c.Get("a", 1)
	c.Get("missing", 1)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
	assert.Equal(t, 1, stats.CurrentSize)
	assert.Equal(t, 10, stats.MaxSize)

	clock.Advance(time.Second)
	c.ResetStats()

	stats = c.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.HitRate)
	assert.Equal(t, 1, stats.CurrentSize, "reset keeps entries")
	assert.Equal(t, clock.Now(), stats.LastReset)
}

func TestCache_Defaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, DefaultMaxSize, c.Stats().MaxSize)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(Options{MaxSize: 8, MaxAge: time.Hour})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*7+i)%16)
				c.Set(key, "v", int64(i%3))
				c.Get(key, int64(i%3))
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 8)
}
