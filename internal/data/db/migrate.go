package db

import (
	"fmt"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrateAll bootstraps the schema on startup. It creates missing tables,
// columns and indexes (including uq_research_data_composite) and never drops.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if !db.Migrator().HasIndex(&types.ResearchData{}, "uq_research_data_composite") {
		if err := db.Migrator().CreateIndex(&types.ResearchData{}, "uq_research_data_composite"); err != nil {
			return fmt.Errorf("create uq_research_data_composite: %w", err)
		}
	}
	return nil
}
