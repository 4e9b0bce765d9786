package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

// Ensure CachingFetcher implements interfaces.ResourceFetcher
var _ interfaces.ResourceFetcher = (*CachingFetcher)(nil)

// CachingFetcher puts a resource byte cache in front of another fetcher.
// Keys are content-addressed by (release, variable, step); the checksum key
// plays no part here, since raw publisher bytes do not change when the cache
// schema does.
type CachingFetcher struct {
	next  interfaces.ResourceFetcher
	cache interfaces.ResourceCache
	ttl   time.Duration
}

// NewCachingFetcher wraps next with the given cache; ttl bounds how long
// fetched bytes stay useful (the archive life).
func NewCachingFetcher(next interfaces.ResourceFetcher, cache interfaces.ResourceCache, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{next: next, cache: cache, ttl: ttl}
}

// Fetch serves from cache when possible, otherwise delegates and fills.
func (f *CachingFetcher) Fetch(ctx context.Context, ref models.ResourceRef) ([]byte, error) {
	key := cacheKey(ref)
	if data, found := f.cache.Get(key); found {
		return data, nil
	}

	data, err := f.next.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	f.cache.Set(key, data, f.ttl)
	return data, nil
}

func cacheKey(ref models.ResourceRef) string {
	return fmt.Sprintf("res:%s:%s:%03d", ref.Release.Identifier(), ref.VariableID, ref.Step)
}
