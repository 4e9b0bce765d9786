package multi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/interfaces"
	"github.com/neoatlantis/na-gribtools/internal/rescache/noop"
)

// mapCache is a trivial in-memory cache for composing test hierarchies.
type mapCache struct {
	data map[string][]byte
}

var _ interfaces.ResourceCache = (*mapCache)(nil)

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (m *mapCache) Get(key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}
func (m *mapCache) Set(key string, val []byte, _ time.Duration) { m.data[key] = val }
func (m *mapCache) Delete(key string)                           { delete(m.data, key) }
func (m *mapCache) Close() error                                { return nil }

func TestMultiCacheGetStopsAtFirstHit(t *testing.T) {
	first := newMapCache()
	second := newMapCache()
	first.Set("k", []byte("from-first"), 0)
	second.Set("k", []byte("from-second"), 0)

	mc := NewMultiCache([]interfaces.ResourceCache{first, second}, []string{"l1", "l2"}, zap.NewNop())

	val, found := mc.Get("k")
	assert.True(t, found)
	assert.Equal(t, []byte("from-first"), val)
}

func TestMultiCacheGetFallsThrough(t *testing.T) {
	first := noop.NewNoOpCache()
	second := newMapCache()
	second.Set("k", []byte("v"), 0)

	mc := NewMultiCache([]interfaces.ResourceCache{first, second}, []string{"l1", "l2"}, zap.NewNop())

	val, found := mc.Get("k")
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)

	_, found = mc.Get("absent")
	assert.False(t, found)
}

func TestMultiCacheSetAndDeleteFanOut(t *testing.T) {
	first := newMapCache()
	second := newMapCache()
	mc := NewMultiCache([]interfaces.ResourceCache{first, second}, []string{"l1", "l2"}, zap.NewNop())

	mc.Set("k", []byte("v"), time.Minute)
	_, inFirst := first.Get("k")
	_, inSecond := second.Get("k")
	assert.True(t, inFirst)
	assert.True(t, inSecond)

	mc.Delete("k")
	_, inFirst = first.Get("k")
	_, inSecond = second.Get("k")
	assert.False(t, inFirst)
	assert.False(t, inSecond)
}
