// Package testutil holds sqlite-backed fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/config"
	"github.com/javajoker/ifm-backend/internal/database"
	"github.com/javajoker/ifm-backend/internal/models"
)

// NewTestDB opens an isolated in-memory sqlite database with the full
// schema, including the exclusivity index.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		LogLevel: "silent",
	}

	db, err := database.Initialize(cfg)
	require.NoError(t, err, "open sqlite")
	require.NoError(t, database.RunMigrations(db), "migrate")

	t.Cleanup(func() { database.Close(db) })
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:  fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("password"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// IdeaOption mutates an idea fixture before it is inserted.
type IdeaOption func(*models.Idea)

func WithExclusivePrice(price int64) IdeaOption {
	return func(i *models.Idea) {
		i.ExclusiveOptionPrice = decimal.NewNullDecimal(decimal.NewFromInt(price))
	}
}

func WithStatus(status models.IdeaStatus) IdeaOption {
	return func(i *models.Idea) { i.Status = status }
}

func WithScore(score float64) IdeaOption {
	return func(i *models.Idea) { i.TotalScore = score }
}

func WithPrice(price int64) IdeaOption {
	return func(i *models.Idea) { i.Price = decimal.NewFromInt(price) }
}

func WithoutResale() IdeaOption {
	return func(i *models.Idea) { i.ResaleAllowed = false }
}

// CreateIdea inserts a purchasable idea priced at 100 with resale allowed.
func CreateIdea(t *testing.T, db *gorm.DB, sellerID uint, opts ...IdeaOption) *models.Idea {
	t.Helper()

	idea := &models.Idea{
		SellerID:      sellerID,
		Title:         "idea-" + uuid.NewString()[:8],
		Summary:       "sum",
		Body:          "body",
		Price:         decimal.NewFromInt(100),
		ResaleAllowed: true,
		Status:        models.IdeaStatusSubmitted,
	}
	for _, opt := range opts {
		opt(idea)
	}
	require.NoError(t, db.Create(idea).Error)
	return idea
}

// CountDeals returns the number of deal rows matching the query.
func CountDeals(t *testing.T, db *gorm.DB, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Deal{}).Where(query, args...).Count(&n).Error)
	return n
}
