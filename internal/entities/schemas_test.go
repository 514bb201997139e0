package entities

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/driftline/foundry/internal/database/testutil"
	"github.com/driftline/foundry/internal/fieldstore"
	"github.com/driftline/foundry/internal/models"
)

func TestSchemasMatchPersistentTables(t *testing.T) {
	cases := map[*fieldstore.Schema]string{
		Users:       "users",
		Sessions:    "sessions",
		Games:       "games",
		Teams:       "teams",
		Memberships: "game_memberships",
		Factories:   "factories",
	}
	for schema, table := range cases {
		require.Equal(t, table, schema.Collection())
	}
}

func TestSensitiveFieldsStayOutOfSharedCache(t *testing.T) {
	spec, err := Users.Field("password_hash")
	require.NoError(t, err)
	require.False(t, spec.DistributedEnabled())
	require.True(t, spec.CacheEnabled())

	spec, err = Sessions.Field("token")
	require.NoError(t, err)
	require.False(t, spec.DistributedEnabled())
}

func TestLargeDocumentsSkipLocalTier(t *testing.T) {
	for schema, field := range map[*fieldstore.Schema]string{
		Games:     "settings",
		Factories: "layout",
	} {
		spec, err := schema.Field(field)
		require.NoError(t, err)
		require.False(t, spec.CacheEnabled())
		require.True(t, spec.DistributedEnabled())
	}
}

func newTestRegistries(t *testing.T) (*Registries, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	store, err := fieldstore.New(fieldstore.Config{DB: db, TTL: time.Minute})
	require.NoError(t, err)
	return NewRegistries(store, 0), db
}

func TestRegistriesReadUserFields(t *testing.T) {
	ctx := context.Background()
	registries, db := newTestRegistries(t)

	gold := int64(100)
	user := models.User{Username: "kestrel", Email: "kestrel@example.com", Gold: &gold}
	require.NoError(t, db.Create(&user).Error)

	id, err := fieldstore.ParseID(user.ID)
	require.NoError(t, err)

	record := registries.Users.Create(id, nil)
	values, err := record.GetFields(ctx, []string{"username", "gold"})
	require.NoError(t, err)
	require.Equal(t, "kestrel", values["username"])
	require.Equal(t, int64(100), values["gold"])
}

func TestClearAllEmptiesEveryRegistry(t *testing.T) {
	registries, _ := newTestRegistries(t)

	registries.Users.Create(fieldstore.NewID(), map[string]any{"username": "a"})
	registries.Games.Create(fieldstore.NewID(), nil)
	require.Equal(t, 1, registries.Users.Len())
	require.Equal(t, 1, registries.Games.Len())

	registries.ClearAll()

	require.Equal(t, 0, registries.Users.Len())
	require.Equal(t, 0, registries.Games.Len())
}

func TestRegistriesBounded(t *testing.T) {
	store, err := fieldstore.New(fieldstore.Config{
		DB:  testutil.MustOpenTestDB(t),
		TTL: time.Minute,
	})
	require.NoError(t, err)

	registries := NewRegistries(store, 2)
	for i := 0; i < 5; i++ {
		registries.Users.Create(fieldstore.NewID(), nil)
	}
	require.Equal(t, 2, registries.Users.Len())
}
