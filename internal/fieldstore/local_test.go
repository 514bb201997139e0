package fieldstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalFieldCacheSetGet(t *testing.T) {
	cache := NewLocalFieldCache(testSchema(t), true)

	cache.Set("username", "kestrel")
	v, ok := cache.Get("username")
	require.True(t, ok)
	require.Equal(t, "kestrel", v)

	_, ok = cache.Get("email")
	require.False(t, ok)
	require.Equal(t, 1, cache.Len())
}

func TestLocalFieldCacheSkipLocalFieldsInvisible(t *testing.T) {
	cache := NewLocalFieldCache(testSchema(t), true)

	cache.Set("last_seen_at", "2026-01-01T00:00:00Z")
	_, ok := cache.Get("last_seen_at")
	require.False(t, ok)
	require.False(t, cache.Has("last_seen_at"))
	require.Equal(t, 0, cache.Len())

	cache.SetMany(map[string]any{"username": "kestrel", "last_seen_at": "x"})
	require.Equal(t, 1, cache.Len())
}

func TestLocalFieldCacheDisabledIsEmpty(t *testing.T) {
	cache := NewLocalFieldCache(testSchema(t), false)

	cache.Set("username", "kestrel")
	cache.SetMany(map[string]any{"email": "k@example.com"})

	_, ok := cache.Get("username")
	require.False(t, ok)
	require.Empty(t, cache.GetMany([]string{"username", "email"}))
	require.Equal(t, 0, cache.Len())
}

func TestLocalFieldCacheGetManyReturnsSubset(t *testing.T) {
	cache := NewLocalFieldCache(testSchema(t), true)
	cache.SetMany(map[string]any{"username": "kestrel", "gold": int64(100)})

	found := cache.GetMany([]string{"username", "gold", "email"})
	require.Len(t, found, 2)
	require.Equal(t, "kestrel", found["username"])
	require.Equal(t, int64(100), found["gold"])
}

func TestLocalFieldCacheFlush(t *testing.T) {
	cache := NewLocalFieldCache(testSchema(t), true)
	cache.SetMany(map[string]any{"username": "kestrel", "email": "k@example.com", "gold": int64(5)})

	cache.Flush("email")
	require.False(t, cache.Has("email"))
	require.True(t, cache.Has("username"))

	cache.Flush()
	require.Equal(t, 0, cache.Len())
}

func TestLocalFieldCacheUnknownFieldIsMiss(t *testing.T) {
	cache := NewLocalFieldCache(testSchema(t), true)

	cache.Set("no_such_field", 1)
	_, ok := cache.Get("no_such_field")
	require.False(t, ok)
	require.Equal(t, 0, cache.Len())
}
