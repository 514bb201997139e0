package fieldstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()

	store, err := New(Config{DB: openTestDB(t), Cache: newMemStore(), TTL: time.Minute})
	require.NoError(t, err)
	return NewRegistry(store, testSchema(t), opts...)
}

func TestRegistryCreateIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	id := NewID()

	first := reg.Create(id, map[string]any{"username": "kestrel"})
	second := reg.Create(id, map[string]any{"username": "impostor"})

	// Same identity, same Record; the second seed is ignored.
	require.Same(t, first, second)
	v, ok := first.Local().Get("username")
	require.True(t, ok)
	require.Equal(t, "kestrel", v)
	require.Equal(t, 1, reg.Len())
}

func TestRegistrySeedPrewarmsLocalTier(t *testing.T) {
	reg := newTestRegistry(t)

	record := reg.Create(NewID(), map[string]any{"username": "kestrel", "gold": int64(10)})

	require.True(t, record.Local().Has("username"))
	require.True(t, record.Local().Has("gold"))
}

func TestRegistryGetAndHas(t *testing.T) {
	reg := newTestRegistry(t)
	id := NewID()

	_, ok := reg.Get(id)
	require.False(t, ok)
	require.False(t, reg.Has(id))

	created := reg.Create(id, nil)
	got, ok := reg.Get(id)
	require.True(t, ok)
	require.Same(t, created, got)
	require.True(t, reg.Has(id))
}

func TestRegistryClear(t *testing.T) {
	reg := newTestRegistry(t)

	record := reg.Create(NewID(), map[string]any{"username": "kestrel"})
	reg.Create(NewID(), nil)
	require.Equal(t, 2, reg.Len())

	reg.Clear(true)

	require.Equal(t, 0, reg.Len())
	// Held references see their local tier emptied too.
	require.Equal(t, 0, record.Local().Len())
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	reg := newTestRegistry(t, WithMaxEntries(2))

	a, b, c := NewID(), NewID(), NewID()

	reg.Create(a, nil)
	reg.Create(b, nil)

	// Touch a so b becomes the eviction candidate.
	_, ok := reg.Get(a)
	require.True(t, ok)

	reg.Create(c, nil)

	require.Equal(t, 2, reg.Len())
	require.True(t, reg.Has(a))
	require.False(t, reg.Has(b))
	require.True(t, reg.Has(c))
}

func TestRegistryEvictionFlushesLocalTier(t *testing.T) {
	reg := newTestRegistry(t, WithMaxEntries(1))

	old := reg.Create(NewID(), map[string]any{"username": "stale"})
	reg.Create(NewID(), nil)

	require.Equal(t, 1, reg.Len())
	require.Equal(t, 0, old.Local().Len())
}

func TestRegistryUnboundedByDefault(t *testing.T) {
	reg := newTestRegistry(t)

	for i := 0; i < 100; i++ {
		reg.Create(NewID(), nil)
	}
	require.Equal(t, 100, reg.Len())
}
