// internal/database/seed.go
package database

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/config"
	"github.com/javajoker/ifm-backend/internal/models"
)

var demoUsers = []struct {
	Email string
	Role  models.Role
}{
	{"seller@example.com", models.RoleSeller},
	{"buyer@example.com", models.RoleBuyer},
	{"admin@example.com", models.RoleAdmin},
}

// SeedInitialData creates demo accounts and ideas. It is part of bootstrap
// and never fails the caller: every problem is logged and skipped so the
// service still comes up.
func SeedInitialData(db *gorm.DB, cfg config.SeedConfig) {
	if !cfg.Enabled {
		return
	}

	logrus.Info("Seeding initial data...")

	for _, du := range demoUsers {
		if err := ensureUser(db, du.Email, du.Role, cfg.DemoPassword); err != nil {
			logrus.WithError(err).WithField("email", du.Email).Warn("Failed to seed user")
		}
	}

	if err := seedDemoIdeas(db); err != nil {
		logrus.WithError(err).Warn("Failed to seed demo ideas")
	}

	logrus.Info("Initial data seeding completed")
}

// ensureUser creates the account, or repairs its role and password when it
// already exists.
func ensureUser(db *gorm.DB, email string, role models.Role, password string) error {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user.Email = email
	user.Role = role
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}

	return db.Save(&user).Error
}

func seedDemoIdeas(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Idea{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var seller models.User
	if err := db.Where("email = ?", "seller@example.com").First(&seller).Error; err != nil {
		return err
	}

	ideas := []models.Idea{
		{
			SellerID:   seller.ID,
			Title:      "Demo Idea A",
			Summary:    "Demo summary A",
			Body:       "Demo body A",
			Price:      decimal.NewFromInt(999),
			Status:     models.IdeaStatusActive,
			TotalScore: 90,
		},
		{
			SellerID:             seller.ID,
			Title:                "Demo Idea B",
			Summary:              "Demo summary B",
			Body:                 "Demo body B",
			Price:                decimal.NewFromInt(1999),
			ExclusiveOptionPrice: decimal.NewNullDecimal(decimal.NewFromInt(9999)),
			ResaleAllowed:        true,
			Status:               models.IdeaStatusActive,
			TotalScore:           80,
		},
	}

	return db.Create(&ideas).Error
}
