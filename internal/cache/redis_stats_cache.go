package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/redis/go-redis/v9"
)

// RedisStatsCache stores aggregates as JSON strings under a service prefix.
type RedisStatsCache struct {
	client redis.UniversalClient
	prefix string
}

var _ port.StatsCache = (*RedisStatsCache)(nil)

func NewRedisStatsCache(client redis.UniversalClient, prefix string) (*RedisStatsCache, error) {
	if client == nil {
		return nil, errors.New("redis stats cache: client is required")
	}
	return &RedisStatsCache{client: client, prefix: prefix}, nil
}

func (c *RedisStatsCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return port.ErrStatsCacheMiss
	}
	if err != nil {
		return fmt.Errorf("client.Get: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}

func (c *RedisStatsCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (c *RedisStatsCache) key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}
