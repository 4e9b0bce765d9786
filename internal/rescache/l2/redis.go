// Package l2 is the optional shared resource cache for deployments where
// several icond instances mirror the same publisher.
package l2

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
)

const opTimeout = 5 * time.Second

// Ensure RedisCache implements interfaces.ResourceCache
var _ interfaces.ResourceCache = (*RedisCache)(nil)

// RedisCache is the L2 resource cache backed by redis.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache connects and pings; a dead redis at startup is reported so
// the composition root can fall back to no L2 cache.
func NewRedisCache(url string, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client, logger: logger}, nil
}

// Get retrieves raw bytes for the key.
func (rc *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			rc.logger.Warn("L2 resource cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores raw bytes with the given ttl.
func (rc *RedisCache) Set(key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rc.client.Set(ctx, key, val, ttl).Err(); err != nil {
		rc.logger.Warn("L2 resource cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes the key.
func (rc *RedisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_ = rc.client.Del(ctx, key).Err()
}

// Close closes the client.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
