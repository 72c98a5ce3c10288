// internal/services/catalog_service.go
package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/models"
)

// CatalogService reads purchasable ideas annotated with the caller's ownership.
type CatalogService struct {
	db *gorm.DB
}

type IdeaView struct {
	ID                   uint                `json:"id"`
	Title                string              `json:"title"`
	Summary              string              `json:"summary"`
	Price                decimal.Decimal     `json:"price"`
	ExclusiveOptionPrice decimal.NullDecimal `json:"exclusive_option_price"`
	ResaleAllowed        bool                `json:"resale_allowed"`
	Status               models.IdeaStatus   `json:"status"`
	TotalScore           float64             `json:"total_score"`
	AlreadyOwned         bool                `json:"already_owned"`
	IsOwned              bool                `json:"is_owned"`
	OwnedIsExclusive     bool                `json:"owned_is_exclusive"`
	ExclusiveTaken       bool                `json:"exclusive_taken"`
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// GetRecommended lists purchasable ideas by total_score, highest first,
// ties broken by id. Ideas the buyer already owns are dropped unless
// includeOwned is set.
func (s *CatalogService) GetRecommended(ctx context.Context, identity models.Identity, includeOwned bool) ([]IdeaView, error) {
	if !identity.Is(models.RoleBuyer) {
		return nil, apperrors.Forbidden(MsgBuyerOnly)
	}

	db := s.db.WithContext(ctx)

	var ideas []models.Idea
	if err := db.Where("status IN ?", models.PurchasableIdeaStatuses).
		Order("total_score DESC").
		Order("id ASC").
		Find(&ideas).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to load ideas")
	}
	if len(ideas) == 0 {
		return []IdeaView{}, nil
	}

	ids := make([]uint, len(ideas))
	for i, idea := range ideas {
		ids[i] = idea.ID
	}

	var owned []models.Deal
	if err := db.Select("idea_id", "is_exclusive").
		Where("buyer_id = ? AND idea_id IN ?", identity.UserID, ids).
		Find(&owned).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to load deals")
	}
	ownedExclusive := make(map[uint]bool, len(owned))
	for _, d := range owned {
		ownedExclusive[d.IdeaID] = d.IsExclusive
	}

	var taken []uint
	if err := db.Model(&models.Deal{}).
		Where("is_exclusive = ? AND idea_id IN ?", true, ids).
		Pluck("idea_id", &taken).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to load exclusive deals")
	}
	takenSet := make(map[uint]struct{}, len(taken))
	for _, id := range taken {
		takenSet[id] = struct{}{}
	}

	views := make([]IdeaView, 0, len(ideas))
	for _, idea := range ideas {
		isExclusive, isOwned := ownedExclusive[idea.ID]
		if isOwned && !includeOwned {
			continue
		}
		_, exclusiveTaken := takenSet[idea.ID]

		views = append(views, IdeaView{
			ID:                   idea.ID,
			Title:                idea.Title,
			Summary:              idea.Summary,
			Price:                idea.Price,
			ExclusiveOptionPrice: idea.ExclusiveOptionPrice,
			ResaleAllowed:        idea.ResaleAllowed,
			Status:               idea.Status,
			TotalScore:           idea.TotalScore,
			AlreadyOwned:         isOwned,
			IsOwned:              isOwned,
			OwnedIsExclusive:     isExclusive,
			ExclusiveTaken:       exclusiveTaken,
		})
	}
	return views, nil
}
