package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisPermissionKeyCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisPermissionKeyCache(client, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	t.Run("miss on empty cache", func(t *testing.T) {
		keys, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, keys)
	})

	t.Run("set then get keeps order", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, 1, 0, []string{"admin", "editor"}))

		keys, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"admin", "editor"}, keys)
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, 2, 0, nil))

		keys, ok, err := c.Get(ctx, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, keys)
	})

	t.Run("ttl is applied with jitter", func(t *testing.T) {
		ttl := mr.TTL("warden:role:keys:1")
		assert.GreaterOrEqual(t, ttl, time.Minute)
		assert.Less(t, ttl, time.Minute+15*time.Second+time.Second)
	})

	t.Run("entries expire", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		_, ok, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, 3, 0, []string{"reports"}))
		require.NoError(t, c.Invalidate(ctx, 3))

		_, ok, err := c.Get(ctx, 3)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt entry is dropped", func(t *testing.T) {
		require.NoError(t, mr.Set("warden:role:keys:4", "not-json"))

		_, ok, err := c.Get(ctx, 4)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, mr.Exists("warden:role:keys:4"))
	})
}

func TestNopPermissionKeyCache(t *testing.T) {
	var c NopPermissionKeyCache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, 0, []string{"admin"}))
	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	gen, err := c.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, gen)
	assert.NoError(t, c.Invalidate(ctx, 1))
}

func TestRedisPermissionKeyCache_Generation(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisPermissionKeyCache(client, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	gen, err := c.Generation(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, gen)

	t.Run("invalidate advances the generation", func(t *testing.T) {
		require.NoError(t, c.Invalidate(ctx, 5))
		require.NoError(t, c.Invalidate(ctx, 5))

		gen, err := c.Generation(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(2), gen)
		assert.Equal(t, time.Duration(0), mr.TTL("warden:role:keysgen:5"), "counter never expires")
	})

	t.Run("write loaded before an invalidation is discarded", func(t *testing.T) {
		before, err := c.Generation(ctx, 6)
		require.NoError(t, err)

		// keys revoked and invalidated while the writer was loading
		require.NoError(t, c.Invalidate(ctx, 6))
		require.NoError(t, c.Set(ctx, 6, before, []string{"admin"}))

		_, ok, err := c.Get(ctx, 6)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, mr.Exists("warden:role:keys:6"))
	})

	t.Run("write with the current generation is stored", func(t *testing.T) {
		current, err := c.Generation(ctx, 6)
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, 6, current, []string{"editor"}))

		keys, ok, err := c.Get(ctx, 6)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"editor"}, keys)
	})
}
