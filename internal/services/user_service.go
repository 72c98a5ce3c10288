// internal/services/user_service.go
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/models"
)

type UserService struct {
	db *gorm.DB
}

// OwnedDeal is a row of the buyer's portfolio.
type OwnedDeal struct {
	DealID      uint              `json:"deal_id"`
	IdeaID      uint              `json:"idea_id"`
	Title       string            `json:"title"`
	Price       decimal.Decimal   `json:"price"`
	IsExclusive bool              `json:"is_exclusive"`
	Status      models.DealStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// MyDeals lists the buyer's deals, newest first. Price is the amount paid.
func (s *UserService) MyDeals(ctx context.Context, identity models.Identity) ([]OwnedDeal, error) {
	if !identity.Is(models.RoleBuyer) {
		return nil, apperrors.Forbidden(MsgBuyerOnly)
	}

	var deals []models.Deal
	if err := s.db.WithContext(ctx).
		Preload("Idea").
		Where("buyer_id = ?", identity.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&deals).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to load deals")
	}

	out := make([]OwnedDeal, 0, len(deals))
	for _, d := range deals {
		title := ""
		if d.Idea != nil {
			title = d.Idea.Title
		}
		out = append(out, OwnedDeal{
			DealID:      d.ID,
			IdeaID:      d.IdeaID,
			Title:       title,
			Price:       d.Amount,
			IsExclusive: d.IsExclusive,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}
