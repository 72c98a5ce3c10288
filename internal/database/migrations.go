// internal/database/migrations.go
package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/models"
)

// ExclusiveDealIndex guarantees a single exclusive holder per idea.
const ExclusiveDealIndex = "ux_deals_exclusive_idea"

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Idea{},
		&models.Deal{},
		&models.ResaleListing{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Constraint indexes are load-bearing for deal correctness: fail hard.
	if err := createConstraintIndexes(db); err != nil {
		return fmt.Errorf("failed to create constraint indexes: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createConstraintIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS " + ExclusiveDealIndex + " ON deals (idea_id) WHERE is_exclusive",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("%s: %w", index, err)
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_ideas_status_score ON ideas(status, total_score DESC, id)",
		"CREATE INDEX IF NOT EXISTS idx_deals_buyer_created ON deals(buyer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_resale_listings_listed_at ON resale_listings(listed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}
