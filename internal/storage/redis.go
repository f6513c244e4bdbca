// Package storage provides the optional Redis response cache for pubglens.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/logging"
)

// RedisClient wraps go-redis. When Redis is not configured or unreachable
// the client is disabled: reads miss and writes are dropped.
type RedisClient struct {
	client  *redis.Client
	enabled bool
	prefix  string
}

// NewRedisClient creates a new Redis client using go-redis.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *RedisClient {
	if cfg.URL == "" {
		logging.Info().Msg("redis not configured (REDIS_URL missing), caching disabled")
		return &RedisClient{prefix: cfg.KeyPrefix}
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to parse REDIS_URL, caching disabled")
		return &RedisClient{prefix: cfg.KeyPrefix}
	}

	opt.PoolSize = 5
	opt.MinIdleConns = 1
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logging.Warn().Err(err).Msg("redis connection failed, caching disabled")
		_ = client.Close()
		return &RedisClient{prefix: cfg.KeyPrefix}
	}

	logging.Info().Str("addr", opt.Addr).Msg("redis connected")
	return NewRedisClientFrom(client, cfg.KeyPrefix)
}

// NewRedisClientFrom wraps an already connected go-redis client.
func NewRedisClientFrom(client *redis.Client, prefix string) *RedisClient {
	return &RedisClient{client: client, enabled: true, prefix: prefix}
}

// Enabled reports whether a Redis server backs the cache.
func (r *RedisClient) Enabled() bool {
	return r != nil && r.enabled
}

// Get returns the cached value, or "" on a miss.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if !r.Enabled() {
		return "", nil
	}
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Set stores value under key for ttl. A zero ttl means no expiry.
func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Delete removes a key from Redis.
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Ping checks the connection. A disabled client reports no error.
func (r *RedisClient) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisClient) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
