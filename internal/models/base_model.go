package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/driftline/foundry/internal/fieldstore"
)

// BaseModel provides shared fields for all persistent entities. Identifiers
// are 24-character lowercase hex strings shared with every cache tier.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures identifiers are generated automatically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = fieldstore.NewID().Hex()
	}
	return nil
}
