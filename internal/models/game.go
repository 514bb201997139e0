package models

import (
	"time"

	"gorm.io/datatypes"
)

// Game is one running or finished match.
type Game struct {
	BaseModel
	Name      string         `gorm:"size:128;not null" json:"name"`
	Status    *string        `gorm:"size:32;index" json:"status"`
	StartedAt *time.Time     `json:"started_at"`
	Settings  datatypes.JSON `json:"settings"`
}
