package cache

import "time"

// CacheEntry is one row of the database-backed cache store. It lives in this
// package rather than with the domain models: the table is an implementation
// detail of the fallback Store, not part of the game schema.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry's TTL has lapsed. A zero expiry means
// the entry never expires.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
