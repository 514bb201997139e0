package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseStore implements the cache Store interface on the primary SQL
// database. It is the fallback distributed tier for deployments without
// Redis: slower, but with the same TTL and batch semantics.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db}
}

// Ready reports whether the store has a usable database handle.
func (s *DatabaseStore) Ready() bool {
	return s != nil && s.db != nil
}

// Ping probes the underlying database connection.
func (s *DatabaseStore) Ping(ctx context.Context) error {
	if !s.Ready() {
		return errors.New("cache: database store not initialised")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Get retrieves a value by key, respecting expiry.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !s.Ready() {
		return nil, false, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var entry CacheEntry
	err := s.db.WithContext(ctx).Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if entry.Expired(time.Now()) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// GetMany retrieves a batch of keys in a single query. Expired and missing
// keys are omitted from the result.
func (s *DatabaseStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	if !s.Ready() {
		return nil, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var entries []CacheEntry
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Find(&entries).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	var stale []string
	for _, entry := range entries {
		if entry.Expired(now) {
			stale = append(stale, entry.Key)
			continue
		}
		out[entry.Key] = entry.Value
	}
	if len(stale) > 0 {
		_ = s.Delete(ctx, stale...)
	}
	return out, nil
}

// Set upserts the value for a given key with expiry.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.SetMany(ctx, map[string][]byte{key: value}, ttl)
}

// SetMany upserts a batch of values sharing one TTL.
func (s *DatabaseStore) SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	if !s.Ready() {
		return errors.New("cache: database store not initialised")
	}
	if len(values) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	expiry := time.Time{}
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}

	entries := make([]CacheEntry, 0, len(values))
	for key, value := range values {
		entries = append(entries, CacheEntry{
			Key:       key,
			Value:     value,
			ExpiresAt: expiry,
		})
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).Create(&entries).Error
}

// Exists counts how many of the supplied keys hold unexpired values.
func (s *DatabaseStore) Exists(ctx context.Context, keys ...string) (int64, error) {
	if !s.Ready() {
		return 0, errors.New("cache: database store not initialised")
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&CacheEntry{}).
		Where("key IN ?", keys).
		Where("expires_at IS NULL OR expires_at = ? OR expires_at > ?", time.Time{}, time.Now()).
		Count(&count).Error
	return count, err
}

// Delete removes keys from the store.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if !s.Ready() {
		return errors.New("cache: database store not initialised")
	}
	if len(keys) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&CacheEntry{}).Error
}

// Keys expands a glob pattern ('*' wildcard) to the matching keys.
func (s *DatabaseStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !s.Ready() {
		return nil, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	like := strings.ReplaceAll(pattern, "*", "%")
	var keys []string
	err := s.db.WithContext(ctx).Model(&CacheEntry{}).
		Where("key LIKE ?", like).
		Pluck("key", &keys).Error
	return keys, err
}

// PurgeExpired deletes rows whose TTL has lapsed. The maintenance sweeper
// calls this on a schedule; reads also lazily evict, so the sweep only
// bounds table growth.
func (s *DatabaseStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if !s.Ready() {
		return 0, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res := s.db.WithContext(ctx).
		Where("expires_at <> ? AND expires_at <= ?", time.Time{}, now).
		Delete(&CacheEntry{})
	return res.RowsAffected, res.Error
}
