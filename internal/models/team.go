package models

// Team is one side within a game.
type Team struct {
	BaseModel
	GameID   string  `gorm:"size:24;not null;index" json:"game_id"`
	Game     *Game   `gorm:"foreignKey:GameID" json:"game,omitempty"`
	Name     string  `gorm:"size:64;not null" json:"name"`
	Color    *string `gorm:"size:16" json:"color"`
	Treasury *int64  `json:"treasury"`
}
