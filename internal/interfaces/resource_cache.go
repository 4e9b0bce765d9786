package interfaces

import "time"

//go:generate mockgen -package=mock -source=resource_cache.go -destination=mock/resource_cache.go

// ResourceCache holds raw fetched resource bytes so a rebuild for the same
// release does not re-download unchanged files.
type ResourceCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
	Delete(key string)
	Close() error
}
