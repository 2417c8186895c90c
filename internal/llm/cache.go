package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores model responses keyed by content hash. Implementations
// must treat failures as misses; a broken cache never blocks a turn.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

// hashKey derives the cache key from everything that shapes the response.
func hashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "llm:" + hex.EncodeToString(h.Sum(nil))[:48]
}

// RedisCache backs the response cache with redis.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		// redis.Nil and transport errors alike are plain misses.
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.rdb.Set(ctx, key, value, ttl)
}

// NopCache disables caching. Used in tests and when redis is absent.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool)         { return "", false }
func (NopCache) Set(context.Context, string, string, time.Duration) {}
