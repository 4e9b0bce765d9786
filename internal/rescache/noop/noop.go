// Package noop is the resource cache used when caching is disabled.
package noop

import (
	"time"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
)

// Ensure NoOpCache implements interfaces.ResourceCache
var _ interfaces.ResourceCache = (*NoOpCache)(nil)

// NoOpCache never stores anything.
type NoOpCache struct{}

// NewNoOpCache creates a new no-operation cache instance.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (n *NoOpCache) Get(string) ([]byte, bool) { return nil, false }

// Set does nothing.
func (n *NoOpCache) Set(string, []byte, time.Duration) {}

// Delete does nothing.
func (n *NoOpCache) Delete(string) {}

// Close does nothing.
func (n *NoOpCache) Close() error { return nil }
