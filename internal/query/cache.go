package query

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dkasten/htsearch/pkg/config"
	"github.com/dkasten/htsearch/pkg/metrics"
	pkgredis "github.com/dkasten/htsearch/pkg/redis"

	"golang.org/x/sync/singleflight"
)

const keyPrefix = "htsearch:query:"

// CachedEngine wraps Engine with an optional Redis-backed result cache
// layered strictly above the scoring core: the core's Search is still a
// plain in-process function call with no network dependency, and
// CachedEngine degrades transparently to calling it directly whenever no
// Redis client is configured.
type CachedEngine struct {
	engine  *Engine
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCachedEngine wraps engine with a cache. client may be nil, in which
// case Search always falls through to engine.Search. m may be nil, in
// which case cache hits/misses are tracked only via Stats.
func NewCachedEngine(engine *Engine, client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *CachedEngine {
	return &CachedEngine{
		engine:  engine,
		client:  client,
		cfg:     cfg,
		logger:  slog.Default().With("component", "query-cache"),
		metrics: m,
	}
}

// Search returns query's results, consulting the cache first when one is
// configured. Concurrent identical cache-miss queries collapse into a
// single Engine.Search call via singleflight.
func (c *CachedEngine) Search(ctx context.Context, query string, k int) ([]string, error) {
	if c.client == nil {
		return c.engine.Search(query, k)
	}

	key := c.buildKey(query, k)
	if urls, ok := c.get(ctx, key); ok {
		return urls, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if urls, ok := c.get(ctx, key); ok {
			return urls, nil
		}
		urls, err := c.engine.Search(query, k)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, urls)
		return urls, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]string), nil
}

// Close releases the underlying Engine's resources.
func (c *CachedEngine) Close() error {
	return c.engine.Close()
}

func (c *CachedEngine) get(ctx context.Context, key string) ([]string, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		if c.metrics != nil {
			c.metrics.CacheMissTotal.Inc()
		}
		return nil, false
	}
	var urls []string
	if err := json.Unmarshal([]byte(data), &urls); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		if c.metrics != nil {
			c.metrics.CacheMissTotal.Inc()
		}
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return urls, true
}

func (c *CachedEngine) set(ctx context.Context, key string, urls []string) {
	data, err := json.Marshal(urls)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// Stats returns the cumulative hit/miss counts.
func (c *CachedEngine) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *CachedEngine) buildKey(query string, k int) string {
	raw := fmt.Sprintf("%s|k=%d", query, k)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
