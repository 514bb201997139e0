package database

import (
	"gorm.io/gorm"

	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/internal/models"
)

// AutoMigrate creates or updates the database schema: the six game
// collections plus the database-backed cache table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Game{},
		&models.Team{},
		&models.Membership{},
		&models.Factory{},
		&cache.CacheEntry{},
	)
}
