package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable returns a client that fails fast: nothing listens on port 1.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
}

func TestNewRedisAccountCache_DefaultTTL(t *testing.T) {
	c := NewRedisAccountCache(unreachable(), 0)
	assert.Equal(t, DefaultTTL, c.ttl)

	c = NewRedisAccountCache(unreachable(), time.Minute)
	assert.Equal(t, time.Minute, c.ttl)
}

func TestAccountKey(t *testing.T) {
	assert.Equal(t, "linkhub:account:abc", accountKey("abc"))
}

func TestRedisAccountCache_ConnectionErrors(t *testing.T) {
	client := unreachable()
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisAccountCache(client, time.Minute)
	ctx := context.Background()

	known, err := c.Known(ctx, "abc")
	require.Error(t, err)
	assert.False(t, known)

	assert.Error(t, c.Remember(ctx, "abc"))
}

func TestNewClient_PingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewClient(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func newMiniredisCache(t *testing.T, ttl time.Duration) (*RedisAccountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAccountCache(client, ttl), mr
}

func TestRedisAccountCache_MissIsNotAnError(t *testing.T) {
	c, _ := newMiniredisCache(t, time.Minute)

	known, err := c.Known(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestRedisAccountCache_RememberThenKnown(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Remember(ctx, "acct-1"))

	known, err := c.Known(ctx, "acct-1")
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, time.Minute, mr.TTL(accountKey("acct-1")))

	known, err = c.Known(ctx, "acct-2")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestRedisAccountCache_Expires(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Remember(ctx, "acct-1"))

	mr.FastForward(59 * time.Second)
	known, err := c.Known(ctx, "acct-1")
	require.NoError(t, err)
	assert.True(t, known)

	mr.FastForward(time.Second)
	known, err = c.Known(ctx, "acct-1")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestNewClient_Pings(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, client.Ping(context.Background()).Err())
}
