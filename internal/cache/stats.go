package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

// ProfileStats 主页展示的粉丝数/关注数
type ProfileStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// StatsCache 按 profile id 缓存计数，nil 视为永远未命中
//
// 每个 profile 额外维护一个版本号：Invalidate 递增版本，
// 回填时版本已变化则放弃写入，避免旧计数覆盖失效结果
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	stale  atomic.Int64
}

var errStaleFill = errors.New("stats version changed")

// NewRedisClient 连接并 ping，地址错误时直接失败
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(profileID uint64) string   { return fmt.Sprintf("profile:stats:%d", profileID) }
func versionKey(profileID uint64) string { return fmt.Sprintf("profile:stats:ver:%d", profileID) }

func (c *StatsCache) Get(ctx context.Context, profileID uint64) (ProfileStats, bool) {
	var out ProfileStats
	if c == nil {
		return out, false
	}
	data, err := c.client.Get(ctx, statsKey(profileID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("stats cache get failed", zap.Uint64("profile_id", profileID), zap.Error(err))
		}
		c.misses.Add(1)
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		c.misses.Add(1)
		return out, false
	}
	c.hits.Add(1)
	return out, true
}

// Version 回源前读取，回填时原样传给 Set
func (c *StatsCache) Version(ctx context.Context, profileID uint64) int64 {
	if c == nil {
		return 0
	}
	v, err := c.client.Get(ctx, versionKey(profileID)).Int64()
	if err != nil && err != redis.Nil {
		logger.Warn("stats cache version failed", zap.Uint64("profile_id", profileID), zap.Error(err))
		return -1
	}
	return v
}

// Set 仅当版本仍为 version 时写入，返回是否写入
func (c *StatsCache) Set(ctx context.Context, profileID uint64, version int64, stats ProfileStats) bool {
	if c == nil || version < 0 {
		return false
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return false
	}
	vk := versionKey(profileID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != version {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, statsKey(profileID), payload, c.ttl)
			return nil
		})
		return err
	}, vk)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.stale.Add(1)
	default:
		logger.Warn("stats cache set failed", zap.Uint64("profile_id", profileID), zap.Error(err))
	}
	return false
}

// Invalidate 递增版本并删除缓存
func (c *StatsCache) Invalidate(ctx context.Context, profileIDs ...uint64) {
	if c == nil || len(profileIDs) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, id := range profileIDs {
			p.Incr(ctx, versionKey(id))
			p.Del(ctx, statsKey(id))
		}
		return nil
	})
	if err != nil {
		logger.Warn("stats cache invalidate failed", zap.Uint64s("profile_ids", profileIDs), zap.Error(err))
	}
}

// Counters 启动以来的命中/未命中/丢弃的过期回填次数
func (c *StatsCache) Counters() (hits, misses, stale int64) {
	if c == nil {
		return 0, 0, 0
	}
	return c.hits.Load(), c.misses.Load(), c.stale.Load()
}
