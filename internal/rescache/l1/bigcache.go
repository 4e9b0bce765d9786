// Package l1 holds raw resource bytes in process memory so a rebuild does
// not re-download files the previous attempt already fetched.
package l1

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
)

// Ensure BigCache implements interfaces.ResourceCache
var _ interfaces.ResourceCache = (*BigCache)(nil)

// BigCache is the in-memory L1 resource cache.
type BigCache struct {
	cache  *bigcache.BigCache
	logger *zap.Logger
}

// NewBigCache sizes the cache in MB and uses the archive life as the global
// eviction window: bytes older than the retention window can never be needed
// again.
func NewBigCache(sizeMB int, life time.Duration, logger *zap.Logger) (*BigCache, error) {
	cfg := bigcache.DefaultConfig(life)
	cfg.HardMaxCacheSize = sizeMB
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &BigCache{cache: cache, logger: logger}, nil
}

// Get retrieves raw bytes for the key.
func (bc *BigCache) Get(key string) ([]byte, bool) {
	data, err := bc.cache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores raw bytes. The per-entry ttl is ignored; bigcache evicts by its
// global life window.
func (bc *BigCache) Set(key string, val []byte, _ time.Duration) {
	if err := bc.cache.Set(key, val); err != nil {
		bc.logger.Warn("Failed to set L1 resource cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes the key.
func (bc *BigCache) Delete(key string) {
	_ = bc.cache.Delete(key)
}

// Close releases the cache.
func (bc *BigCache) Close() error {
	return bc.cache.Close()
}
