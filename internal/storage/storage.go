package storage

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gamewatch-dev/gamewatch/internal/models"
)

// Open connects to the MySQL database behind the repositories.
// TranslateError is required so unique-constraint violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for all tracked entities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Game{}, &models.GamePrice{}, &models.IgnoreEntry{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
