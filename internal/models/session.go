package models

import "time"

// Session is one authenticated browser session for a user.
type Session struct {
	BaseModel
	UserID    string     `gorm:"size:24;not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Token     *string    `gorm:"uniqueIndex;size:128" json:"-"`
	IPAddress *string    `gorm:"size:64" json:"ip_address"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`
}
