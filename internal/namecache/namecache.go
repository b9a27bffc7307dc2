// Package namecache provides a Redis-backed cache for resolved item display
// names, so repeated collection runs skip the per-item name lookup. Cache
// failures degrade to misses; the cache can never fail a run.
package namecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/insight-stream/internal/pkg/logger"
)

const keyPrefix = "insight:name:"

// DefaultTTL bounds how long a resolved name is trusted. Display names
// change rarely; a day keeps re-runs cheap without serving stale names for
// long.
const DefaultTTL = 24 * time.Hour

// Cache is the Redis-backed name cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache on an existing Redis client. ttl <= 0 uses DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// NewFromURL connects to Redis from a URL (redis://host:port/db).
func NewFromURL(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return New(redis.NewClient(opts), ttl), nil
}

// Lookup returns the cached display name for an item id, if present.
func (c *Cache) Lookup(ctx context.Context, id string) (string, bool) {
	name, err := c.client.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Debug("namecache: lookup failed", "item", id, "error", err.Error())
		return "", false
	}
	return name, true
}

// Store records a resolved display name. Failures are logged and dropped.
func (c *Cache) Store(ctx context.Context, id, name string) {
	if err := c.client.Set(ctx, keyPrefix+id, name, c.ttl).Err(); err != nil {
		logger.Debug("namecache: store failed", "item", id, "error", err.Error())
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
