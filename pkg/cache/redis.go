// Package cache 提供远程三何分类结果的 Redis 缓存。
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"its4teacher-go/internal/config"
	"its4teacher-go/internal/model"
	"its4teacher-go/pkg/log"
)

const keyPrefix = "threehe:"

// NewRedisClient 根据配置创建 Redis 客户端并测试连接。
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}

// ThreeHeCache 以问题文本的 MD5 为键缓存三何类型。
type ThreeHeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewThreeHeCache 创建缓存。ttl 为 0 表示永不过期。
func NewThreeHeCache(rdb *redis.Client, ttl time.Duration) *ThreeHeCache {
	return &ThreeHeCache{rdb: rdb, ttl: ttl}
}

// Key 返回问题对应的缓存键。
func Key(question string) string {
	sum := md5.Sum([]byte(question))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get 查询缓存，未命中时 ok 为 false 且 err 为 nil。
func (c *ThreeHeCache) Get(ctx context.Context, question string) (model.ThreeHeType, bool, error) {
	val, err := c.rdb.Get(ctx, Key(question)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return model.ThreeHeType(val), true, nil
}

// Set 写入缓存。
func (c *ThreeHeCache) Set(ctx context.Context, question string, three model.ThreeHeType) error {
	return c.rdb.Set(ctx, Key(question), string(three), c.ttl).Err()
}
