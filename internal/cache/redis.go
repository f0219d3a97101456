// Package cache holds the optional Redis-backed account existence cache
// consulted by the request authenticator.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an account id stays cached.
const DefaultTTL = 15 * time.Minute

// RedisAccountCache records account ids that are known to exist.
type RedisAccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAccountCache returns a cache using client. A non-positive ttl
// selects DefaultTTL.
func NewRedisAccountCache(client *redis.Client, ttl time.Duration) *RedisAccountCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisAccountCache{client: client, ttl: ttl}
}

// NewClient connects to addr and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func accountKey(id string) string {
	return "linkhub:account:" + id
}

// Known reports whether id was remembered and has not expired.
func (c *RedisAccountCache) Known(ctx context.Context, id string) (bool, error) {
	err := c.client.Get(ctx, accountKey(id)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", accountKey(id), err)
	}
	return true, nil
}

// Remember records id for the cache TTL.
func (c *RedisAccountCache) Remember(ctx context.Context, id string) error {
	if err := c.client.Set(ctx, accountKey(id), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", accountKey(id), err)
	}
	return nil
}
