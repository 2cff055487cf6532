package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialfeed/config"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsCache(client, time.Minute), mr
}

func TestStatsCache_SetGetInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, 7)
	assert.False(t, ok)

	require.True(t, c.Set(ctx, 7, c.Version(ctx, 7), ProfileStats{Followers: 3, Following: 1}))
	got, ok := c.Get(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, ProfileStats{Followers: 3, Following: 1}, got)

	c.Invalidate(ctx, 7, 8)
	_, ok = c.Get(ctx, 7)
	assert.False(t, ok)

	hits, misses, stale := c.Counters()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 2, misses)
	assert.Zero(t, stale)
}

func TestStatsCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, 1, 0, ProfileStats{Followers: 1})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestStatsCache_NilIsAlwaysMiss(t *testing.T) {
	var c *StatsCache
	ctx := context.Background()

	assert.False(t, c.Set(ctx, 1, c.Version(ctx, 1), ProfileStats{Followers: 1}))
	c.Invalidate(ctx, 1)
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

// 回源期间发生失效，旧计数不能写回缓存
func TestStatsCache_FillAfterInvalidateIsDropped(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	version := c.Version(ctx, 5)
	c.Invalidate(ctx, 5)
	assert.False(t, c.Set(ctx, 5, version, ProfileStats{Followers: 1}))
	_, ok := c.Get(ctx, 5)
	assert.False(t, ok)

	require.True(t, c.Set(ctx, 5, c.Version(ctx, 5), ProfileStats{Followers: 2}))
	got, ok := c.Get(ctx, 5)
	require.True(t, ok)
	assert.EqualValues(t, 2, got.Followers)

	_, _, stale := c.Counters()
	assert.EqualValues(t, 1, stale)
}
