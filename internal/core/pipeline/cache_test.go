package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyIsDeterministic(t *testing.T) {
	a := CacheKey([]byte("imagen uno"))
	b := CacheKey([]byte("imagen uno"))
	c := CacheKey([]byte("imagen dos"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestCachePutGet(t *testing.T) {
	cache := NewResultCache(10)

	cache.Put("k1", Response{Text: "hola"})

	resp, ok := cache.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "hola", resp.Text)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	cache := NewResultCache(3)
	cache.Put("k1", Response{Text: "uno"})
	cache.Put("k2", Response{Text: "dos"})
	cache.Put("k3", Response{Text: "tres"})

	cache.Put("k4", Response{Text: "cuatro"})

	_, ok := cache.Get("k1")
	assert.False(t, ok, "oldest entry must be evicted")
	for _, key := range []string{"k2", "k3", "k4"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "entry %s should survive", key)
	}
	assert.Equal(t, 3, cache.Len())
}

func TestCacheEvictionIgnoresReads(t *testing.T) {
	cache := NewResultCache(2)
	cache.Put("k1", Response{Text: "uno"})
	cache.Put("k2", Response{Text: "dos"})

	// Reading k1 does not protect it: eviction is insertion order.
	cache.Get("k1")
	cache.Put("k3", Response{Text: "tres"})

	_, ok := cache.Get("k1")
	assert.False(t, ok)
}

func TestCacheRePutRefreshesValueNotPosition(t *testing.T) {
	cache := NewResultCache(2)
	cache.Put("k1", Response{Text: "uno"})
	cache.Put("k2", Response{Text: "dos"})

	cache.Put("k1", Response{Text: "uno v2"})
	cache.Put("k3", Response{Text: "tres"})

	_, ok := cache.Get("k1")
	assert.False(t, ok, "re-put must not reset the eviction position")

	resp, ok := cache.Get("k2")
	require.True(t, ok)
	assert.Equal(t, "dos", resp.Text)
}

func TestCacheClear(t *testing.T) {
	cache := NewResultCache(5)
	cache.Put("k1", Response{Text: "uno"})

	cache.Clear()

	assert.Zero(t, cache.Len())
	_, ok := cache.Get("k1")
	assert.False(t, ok)
}

func TestCacheDefaultCapacity(t *testing.T) {
	cache := NewResultCache(0)

	for i := 0; i < DefaultCacheCapacity+20; i++ {
		cache.Put(CacheKey([]byte{byte(i), byte(i >> 8)}), Response{})
	}

	assert.Equal(t, DefaultCacheCapacity, cache.Len())
}
