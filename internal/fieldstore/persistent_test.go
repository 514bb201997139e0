package fieldstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/driftline/foundry/pkg/errors"
)

// userRow mirrors the players table for these tests. The fieldstore package
// itself is schema-agnostic, so the table is declared locally instead of
// importing the application models (which depend on this package).
type userRow struct {
	ID           string `gorm:"primaryKey;size:24"`
	Username     string
	Email        string
	PasswordHash *string
	Gold         *int64
	LastSeenAt   *time.Time
}

func (userRow) TableName() string { return "users" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userRow{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func seedUser(t *testing.T, db *gorm.DB, id ID) {
	t.Helper()
	gold := int64(100)
	require.NoError(t, db.Create(&userRow{
		ID:       id.Hex(),
		Username: "kestrel",
		Email:    "kestrel@example.com",
		Gold:     &gold,
	}).Error)
}

func TestPersistentStoreGetFields(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	id := NewID()
	seedUser(t, db, id)

	persist := NewPersistentStore(db, testSchema(t), id)

	found, exists, err := persist.GetFields(ctx, []string{"username", "gold", "last_seen_at"})
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "kestrel", found["username"])
	require.Equal(t, int64(100), found["gold"])

	// NULL columns are absent, not nil entries.
	_, ok := found["last_seen_at"]
	require.False(t, ok)
}

func TestPersistentStoreMissingRowIsAbsent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	persist := NewPersistentStore(db, testSchema(t), NewID())

	found, exists, err := persist.GetFields(ctx, []string{"username"})
	require.NoError(t, err)
	require.False(t, exists)
	require.Empty(t, found)
}

func TestPersistentStoreSetFields(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	id := NewID()
	seedUser(t, db, id)

	persist := NewPersistentStore(db, testSchema(t), id)

	require.NoError(t, persist.SetFields(ctx, map[string]any{
		"username": "magpie",
		"gold":     int64(250),
	}))

	found, exists, err := persist.GetFields(ctx, []string{"username", "gold"})
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "magpie", found["username"])
	require.Equal(t, int64(250), found["gold"])
}

func TestPersistentStoreSetMissingRowIsHard(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	persist := NewPersistentStore(db, testSchema(t), NewID())

	err := persist.SetFields(ctx, map[string]any{"username": "ghost"})
	require.True(t, errors.IsHard(err))
}

func TestPersistentStoreHasFields(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	id := NewID()
	seedUser(t, db, id)

	persist := NewPersistentStore(db, testSchema(t), id)

	ok, err := persist.HasFields(ctx, []string{"username", "gold"})
	require.NoError(t, err)
	require.True(t, ok)

	// password_hash was never set and is NULL.
	ok, err = persist.HasField(ctx, "password_hash")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = persist.HasFields(ctx, []string{"username", "password_hash"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = NewPersistentStore(db, testSchema(t), NewID()).HasField(ctx, "username")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPersistentStoreFlushFieldsNullsColumns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	id := NewID()
	seedUser(t, db, id)

	persist := NewPersistentStore(db, testSchema(t), id)

	require.NoError(t, persist.Flush(ctx, "gold"))

	ok, err := persist.HasField(ctx, "gold")
	require.NoError(t, err)
	require.False(t, ok)

	// The row itself survives a field-level flush.
	_, exists, err := persist.GetFields(ctx, []string{"username"})
	require.NoError(t, err)
	require.True(t, exists)
}

func TestPersistentStoreFlushDeletesRow(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	id := NewID()
	seedUser(t, db, id)

	persist := NewPersistentStore(db, testSchema(t), id)

	require.NoError(t, persist.Flush(ctx))

	_, exists, err := persist.GetFields(ctx, []string{"username"})
	require.NoError(t, err)
	require.False(t, exists)
}
