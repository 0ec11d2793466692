package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Demigodrick/community-bot/internal/models"
)

// Connect bootstraps the SQLite database at the provided filesystem path and
// migrates the enforcement schema.
func Connect(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies auto-migrations for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.RuleSet{},
		&models.EnforcementStep{},
		&models.EnforcementCase{},
		&models.SeenPost{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}
