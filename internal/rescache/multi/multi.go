// Package multi fans resource cache operations out over the configured
// levels: reads stop at the first hit, writes and deletes go everywhere.
package multi

import (
	"time"

	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/metrics"
)

// Ensure MultiCache implements interfaces.ResourceCache
var _ interfaces.ResourceCache = (*MultiCache)(nil)

// MultiCache composes L1 and L2 resource caches in lookup order.
type MultiCache struct {
	caches []interfaces.ResourceCache
	levels []string
	logger *zap.Logger
}

// NewMultiCache takes caches in lookup order with their metric level names
// ("l1", "l2").
func NewMultiCache(caches []interfaces.ResourceCache, levels []string, logger *zap.Logger) *MultiCache {
	return &MultiCache{caches: caches, levels: levels, logger: logger}
}

// Get returns the first hit across the levels.
func (mc *MultiCache) Get(key string) ([]byte, bool) {
	for i, cache := range mc.caches {
		if val, found := cache.Get(key); found {
			metrics.RecordResourceCacheHit(mc.levels[i])
			return val, true
		}
	}
	metrics.RecordResourceCacheMiss()
	return nil, false
}

// Set stores in every level.
func (mc *MultiCache) Set(key string, val []byte, ttl time.Duration) {
	for _, cache := range mc.caches {
		cache.Set(key, val, ttl)
	}
}

// Delete removes from every level.
func (mc *MultiCache) Delete(key string) {
	for _, cache := range mc.caches {
		cache.Delete(key)
	}
}

// Close closes every level, returning the first error.
func (mc *MultiCache) Close() error {
	var first error
	for _, cache := range mc.caches {
		if err := cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
