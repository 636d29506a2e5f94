package geocode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pfrederiksen/ski-spot/internal/logger"
)

const redisKeyPrefix = "geocode:"

// RedisCache shares lookups between processes through Redis. Redis errors
// are logged and treated as misses.
type RedisCache struct {
	redis *redis.Client
}

// NewRedisCache creates a cache on an existing client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{redis: client}
}

// DialRedis connects to addr and verifies the connection
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Get returns the cached entry for key
func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool) {
	data, err := c.redis.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return Entry{}, false
	}
	if err != nil {
		logger.Warn("Geocode cache read failed", logger.Fields{"key": key, "error": err.Error()})
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		logger.Warn("Discarding malformed geocode cache entry", logger.Fields{"key": key})
		return Entry{}, false
	}
	return e, true
}

// Set stores e under key with the given expiration
func (c *RedisCache) Set(ctx context.Context, key string, e Entry, ttl time.Duration) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		logger.Warn("Geocode cache write failed", logger.Fields{"key": key, "error": err.Error()})
	}
}
