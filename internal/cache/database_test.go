package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/internal/database/testutil"
)

func newTestDatabaseStore(t *testing.T) *cache.DatabaseStore {
	t.Helper()
	store := cache.NewDatabaseStore(testutil.MustOpenTestDB(t))
	require.True(t, store.Ready())
	return store
}

func TestDatabaseStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.Set(ctx, "model:users:abc:fields:gold", []byte("100"), time.Minute))

	value, found, err := store.Get(ctx, "model:users:abc:fields:gold")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("100"), value)

	_, found, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreSetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte("one"), time.Minute))
	require.NoError(t, store.Set(ctx, "k", []byte("two"), time.Minute))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("two"), value)
}

func TestDatabaseStoreExpiredEntriesAreMisses(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.Set(ctx, "ephemeral", []byte("x"), -time.Second))
	require.NoError(t, store.Set(ctx, "durable", []byte("y"), time.Minute))

	_, found, err := store.Get(ctx, "ephemeral")
	require.NoError(t, err)
	require.False(t, found)

	// The lazy evict removed the expired row entirely.
	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	require.Equal(t, []string{"durable"}, keys)
}

func TestDatabaseStoreGetMany(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.SetMany(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}, time.Minute))
	require.NoError(t, store.Set(ctx, "stale", []byte("3"), -time.Second))

	values, err := store.GetMany(ctx, []string{"a", "b", "stale", "missing"})
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, values)
}

func TestDatabaseStoreExistsCountsUnexpired(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.Set(ctx, "live", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "forever", []byte("2"), 0))
	require.NoError(t, store.Set(ctx, "gone", []byte("3"), -time.Second))

	count, err := store.Exists(ctx, "live", "forever", "gone", "missing")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestDatabaseStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.Set(ctx, "k", []byte("1"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k", "never-existed"))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreKeysGlob(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.SetMany(ctx, map[string][]byte{
		"model:users:abc:fields:gold":  []byte("1"),
		"model:users:abc:fields:name":  []byte("2"),
		"model:users:def:fields:gold":  []byte("3"),
		"model:games:abc:fields:state": []byte("4"),
	}, time.Minute))

	keys, err := store.Keys(ctx, "model:users:abc:*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"model:users:abc:fields:gold",
		"model:users:abc:fields:name",
	}, keys)
}

func TestDatabaseStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := newTestDatabaseStore(t)

	require.NoError(t, store.Set(ctx, "stale", []byte("1"), time.Millisecond))
	require.NoError(t, store.Set(ctx, "live", []byte("2"), time.Hour))
	require.NoError(t, store.Set(ctx, "forever", []byte("3"), 0))

	purged, err := store.PurgeExpired(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"live", "forever"}, keys)
}

func TestDatabaseStoreNilHandle(t *testing.T) {
	store := cache.NewDatabaseStore(nil)
	require.False(t, store.Ready())
	require.Error(t, store.Ping(context.Background()))
}
