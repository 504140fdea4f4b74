// Package usercache caches the most recent catalog fetch per user with a
// time-to-live, so repeated messages from the same user do not hammer the
// catalog API. Keys are sharded so different users never contend on one
// lock, and concurrent fetches for the same user collapse via singleflight.
package usercache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
)

const shardCount = 16

// Fetcher retrieves the course list for a user. Satisfied by *catalog.Client.
type Fetcher interface {
	FetchCourses(ctx context.Context, userID, authToken string) []catalog.Course
}

// MetricsRecorder records cache metrics. Satisfied by *metrics.Metrics.
type MetricsRecorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordSingleflightDedup()
}

type entry struct {
	fetchedAt time.Time
	courses   []catalog.Course
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Cache is the per-user catalog cache.
type Cache struct {
	ttl     time.Duration
	fetcher Fetcher
	group   singleflight.Group
	shards  [shardCount]*shard
	metrics MetricsRecorder

	// now is injectable for TTL tests.
	now func() time.Time
}

// New creates a cache with the given TTL.
func New(ttl time.Duration, fetcher Fetcher) *Cache {
	c := &Cache{
		ttl:     ttl,
		fetcher: fetcher,
		now:     time.Now,
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return c
}

// SetMetrics enables cache metrics recording.
func (c *Cache) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// SetClock overrides the time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Cache) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return c.shards[h.Sum32()%shardCount]
}

// GetOrFetch returns the cached course list for userID when it is younger
// than the TTL, otherwise fetches fresh data, stores it with the current
// timestamp, and returns it. A stale entry is never returned.
func (c *Cache) GetOrFetch(ctx context.Context, userID, authToken string) []catalog.Course {
	s := c.shardFor(userID)

	s.mu.RLock()
	cached, ok := s.entries[userID]
	s.mu.RUnlock()

	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		if c.metrics != nil {
			c.metrics.RecordCacheHit()
		}
		return cached.courses
	}

	if c.metrics != nil {
		c.metrics.RecordCacheMiss()
	}

	// Collapse concurrent fetches for the same user into one call.
	result, _, shared := c.group.Do(userID, func() (any, error) {
		courses := c.fetcher.FetchCourses(ctx, userID, authToken)

		s.mu.Lock()
		s.entries[userID] = entry{fetchedAt: c.now(), courses: courses}
		s.mu.Unlock()

		return courses, nil
	})
	if shared && c.metrics != nil {
		c.metrics.RecordSingleflightDedup()
	}

	courses, _ := result.([]catalog.Course)
	return courses
}

// Invalidate drops the cached entry for userID.
func (c *Cache) Invalidate(userID string) {
	s := c.shardFor(userID)
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
}

// Len returns the total number of cached entries across all shards.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}
