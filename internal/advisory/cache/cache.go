// internal/advisory/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"advisor-workers/internal/common/logger"
	"advisor-workers/internal/common/metrics"
)

// TTL policy. Primary tool results are requested more often and change
// more, so they expire before supporting results. Synthesized answers
// with zero results expire quickly so a transient miss self-heals.
const (
	TTLPrimaryResults    = 5 * time.Minute
	TTLSupportingResults = 30 * time.Minute
	TTLEmptyAnswer       = 2 * time.Minute
	TTLAnswer            = 30 * time.Minute
)

// Options controls one Set call.
type Options struct {
	TTL  time.Duration
	Tags []string
}

// Metadata is stored alongside the value for introspection only; it
// never participates in lookups.
type Metadata map[string]interface{}

// envelope is the stored representation of a cache entry.
type envelope struct {
	Value     json.RawMessage `json:"value"`
	Tags      []string        `json:"tags,omitempty"`
	Metadata  Metadata        `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Stats is the read-only introspection snapshot.
type Stats struct {
	EntryCount     int64          `json:"entryCount"`
	HitRate        float64        `json:"hitRate"`
	PopularQueries []PopularQuery `json:"popularQueries"`
}

// Cache is the shared cache handle: an exact-match TTL store on Redis
// plus an in-process bounded similarity index over recent query texts.
// Construct one per process and inject it; there is no global instance.
type Cache struct {
	rdb    *redis.Client
	logger logger.Logger
	recent *similarityIndex

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache handle over the given Redis client.
func New(rdb *redis.Client, log logger.Logger) *Cache {
	return &Cache{
		rdb:    rdb,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
		recent: newSimilarityIndex(defaultIndexCapacity),
	}
}

// Get returns the stored payload for key, or ok=false on miss. Expired
// entries are evicted lazily by Redis and read as misses. A backend
// error is an unconditional miss, never an escalated failure.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed, treating as miss", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		c.misses.Add(1)
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		c.misses.Add(1)
		metrics.CacheMisses.Inc()
		return nil, false
	}

	c.hits.Add(1)
	metrics.CacheHits.Inc()
	return env.Value, true
}

// Set stores value under key with the given TTL and tags. Writes are
// fire-and-forget relative to the response path: failures are logged and
// swallowed, since every cached value is idempotently recomputable.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, opts Options, meta Metadata) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache write skipped, value not serializable", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	env := envelope{
		Value:     raw,
		Tags:      opts.Tags,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
	payload, _ := json.Marshal(env)

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, payload, opts.TTL)
	for _, tag := range opts.Tags {
		pipe.SAdd(ctx, tagKey(tag), key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("cache write failed, continuing", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// InvalidateByTag removes every entry whose tag set contains tag and
// returns the number of entries removed.
func (c *Cache) InvalidateByTag(ctx context.Context, tag string) int {
	members, err := c.rdb.SMembers(ctx, tagKey(tag)).Result()
	if err != nil {
		c.logger.Warn("tag lookup failed", map[string]interface{}{
			"tag":   tag,
			"error": err.Error(),
		})
		return 0
	}
	if len(members) == 0 {
		return 0
	}

	removed, err := c.rdb.Del(ctx, members...).Result()
	if err != nil {
		c.logger.Warn("tag invalidation failed", map[string]interface{}{
			"tag":   tag,
			"error": err.Error(),
		})
		return 0
	}
	c.rdb.Del(ctx, tagKey(tag))
	return int(removed)
}

// FindSimilar compares queryText against previously seen query texts and
// returns the stored response of the most similar one when its
// similarity reaches threshold. A threshold of 0 is the documented
// telemetry idiom: the query is recorded for popularity tracking and no
// match is returned.
func (c *Cache) FindSimilar(ctx context.Context, queryText string, threshold float64) (json.RawMessage, bool) {
	if threshold <= 0 {
		c.recent.observe(queryText, "")
		return nil, false
	}

	key, sim := c.recent.bestMatch(queryText)
	if key == "" || sim < threshold {
		return nil, false
	}
	return c.Get(ctx, key)
}

// RememberQuery records a query text and the exact-cache key holding its
// response, so later FindSimilar calls can reuse it.
func (c *Cache) RememberQuery(queryText, key string) {
	c.recent.observe(queryText, key)
}

// Stats returns a read-only snapshot: exact-store entry count, process
// hit rate, and the most popular recent queries.
func (c *Cache) Stats(ctx context.Context) Stats {
	var entries int64
	if n, err := c.rdb.DBSize(ctx).Result(); err == nil {
		entries = n
	}

	hits := c.hits.Load()
	misses := c.misses.Load()
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}

	return Stats{
		EntryCount:     entries,
		HitRate:        rate,
		PopularQueries: c.recent.popular(10),
	}
}
