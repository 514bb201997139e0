package models

import "time"

// User is a registered player account.
type User struct {
	BaseModel
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash *string    `gorm:"size:255" json:"-"`
	Gold         *int64     `json:"gold"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
}
