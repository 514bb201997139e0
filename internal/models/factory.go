package models

import (
	"time"

	"gorm.io/datatypes"
)

// Factory is a production building owned by a team.
type Factory struct {
	BaseModel
	GameID     string         `gorm:"size:24;not null;index" json:"game_id"`
	TeamID     string         `gorm:"size:24;not null;index" json:"team_id"`
	Kind       string         `gorm:"size:32;not null" json:"kind"`
	Level      *int64         `json:"level"`
	Stock      *int64         `json:"stock"`
	Layout     datatypes.JSON `json:"layout"`
	ProducesAt *time.Time     `gorm:"index" json:"produces_at"`
}

// TableName pins the collection name shared with the cache key format.
func (Factory) TableName() string { return "factories" }
