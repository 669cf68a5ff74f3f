package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"budgetbite/config"

	"github.com/redis/go-redis/v9"
)

// RedisCache 基于 Redis 的报表缓存，值以 JSON 存储
type RedisCache struct {
	rdb redis.Cmdable
}

// NewRedisCache 连接 Redis 并 ping 一次
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &RedisCache{rdb: client}, client, nil
}

// Get 读取并解码，key 不存在返回 false
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("解码缓存 %s 失败: %w", key, err)
	}
	return true, nil
}

// Set 编码后写入并设置过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, b, ttl).Err()
}

// Delete 删除缓存
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
