package models

import "time"

// Membership ties a user to a game and, once assigned, to a team.
type Membership struct {
	BaseModel
	GameID   string     `gorm:"size:24;not null;index:idx_membership_game_user,unique" json:"game_id"`
	UserID   string     `gorm:"size:24;not null;index:idx_membership_game_user,unique" json:"user_id"`
	TeamID   *string    `gorm:"size:24;index" json:"team_id"`
	Role     *string    `gorm:"size:32" json:"role"`
	JoinedAt *time.Time `json:"joined_at"`
}

// TableName keeps the historical collection name used by the cache tiers.
func (Membership) TableName() string { return "game_memberships" }
