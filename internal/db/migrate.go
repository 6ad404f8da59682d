package db

import (
	"fmt"

	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every model.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&gormModels.User{},
		&gormModels.Group{},
		&gormModels.Participant{},
		&gormModels.FormReturn{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
