package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate auto-migrates the given models and then applies the raw
// constraints GORM tags cannot express.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return MigrateConstraints(db)
}
