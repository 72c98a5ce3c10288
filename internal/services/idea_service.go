// internal/services/idea_service.go
package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/models"
)

// IdeaService manages a seller's own ideas.
type IdeaService struct {
	db *gorm.DB
}

type CreateIdeaRequest struct {
	Title                string              `json:"title" validate:"required,max=255"`
	Summary              string              `json:"summary" validate:"required"`
	Body                 string              `json:"body" validate:"required"`
	Price                decimal.Decimal     `json:"price" validate:"gt=0"`
	ExclusiveOptionPrice decimal.NullDecimal `json:"exclusive_option_price" validate:"omitempty,gt=0"`
	ResaleAllowed        *bool               `json:"resale_allowed"`
	Status               models.IdeaStatus   `json:"status" validate:"omitempty,oneof=DRAFT SUBMITTED"`
}

type UpdateIdeaStatusRequest struct {
	Status models.IdeaStatus `json:"status" validate:"required,oneof=DRAFT SUBMITTED ACTIVE ARCHIVED"`
}

type UpdateIdeaPricingRequest struct {
	Price                decimal.Decimal     `json:"price" validate:"gt=0"`
	ExclusiveOptionPrice decimal.NullDecimal `json:"exclusive_option_price" validate:"omitempty,gt=0"`
}

func NewIdeaService(db *gorm.DB) *IdeaService {
	return &IdeaService{db: db}
}

func (s *IdeaService) CreateIdea(ctx context.Context, identity models.Identity, req *CreateIdeaRequest) (*models.Idea, error) {
	if !identity.Is(models.RoleSeller) {
		return nil, apperrors.Forbidden(MsgSellerOnly)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	price, exclusivePrice, err := normalizePricing(req.Price, req.ExclusiveOptionPrice)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := loadActiveUser(db, identity.UserID); err != nil {
		return nil, internalError(err, "failed to create idea")
	}

	status := req.Status
	if status == "" {
		status = models.IdeaStatusDraft
	}
	resaleAllowed := true
	if req.ResaleAllowed != nil {
		resaleAllowed = *req.ResaleAllowed
	}

	idea := &models.Idea{
		SellerID:             identity.UserID,
		Title:                req.Title,
		Summary:              req.Summary,
		Body:                 req.Body,
		Price:                price,
		ExclusiveOptionPrice: exclusivePrice,
		ResaleAllowed:        resaleAllowed,
		Status:               status,
	}
	if err := db.Create(idea).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to create idea")
	}

	logrus.WithFields(logrus.Fields{
		"idea_id":   idea.ID,
		"seller_id": identity.UserID,
		"status":    idea.Status,
	}).Info("Idea created")
	return idea, nil
}

func (s *IdeaService) GetIdea(ctx context.Context, ideaID uint) (*models.Idea, error) {
	idea, err := loadIdea(s.db.WithContext(ctx), ideaID)
	if err != nil {
		return nil, internalError(err, "failed to load idea")
	}
	return idea, nil
}

func (s *IdeaService) ListSellerIdeas(ctx context.Context, identity models.Identity) ([]models.Idea, error) {
	if !identity.Is(models.RoleSeller) {
		return nil, apperrors.Forbidden(MsgSellerOnly)
	}

	ideas := make([]models.Idea, 0)
	if err := s.db.WithContext(ctx).
		Where("seller_id = ?", identity.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ideas).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to load ideas")
	}
	return ideas, nil
}

func (s *IdeaService) UpdateIdeaStatus(ctx context.Context, identity models.Identity, ideaID uint, req *UpdateIdeaStatusRequest) (*models.Idea, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	idea, err := s.ownedIdea(ctx, identity, ideaID)
	if err != nil {
		return nil, err
	}
	if !idea.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.InvalidState(fmt.Sprintf("%s: %s -> %s", MsgInvalidStatusTransition, idea.Status, req.Status))
	}

	previous := idea.Status
	if err := s.db.WithContext(ctx).Model(idea).Update("status", req.Status).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update idea status")
	}
	idea.Status = req.Status

	logrus.WithFields(logrus.Fields{
		"idea_id": idea.ID,
		"from":    previous,
		"to":      req.Status,
	}).Info("Idea status changed")
	return idea, nil
}

// UpdateIdeaPricing changes list prices. Existing deals keep the amount
// they were bought at.
func (s *IdeaService) UpdateIdeaPricing(ctx context.Context, identity models.Identity, ideaID uint, req *UpdateIdeaPricingRequest) (*models.Idea, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	price, exclusivePrice, err := normalizePricing(req.Price, req.ExclusiveOptionPrice)
	if err != nil {
		return nil, err
	}

	idea, err := s.ownedIdea(ctx, identity, ideaID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(idea).Updates(map[string]interface{}{
		"price":                  price,
		"exclusive_option_price": exclusivePrice,
	}).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to update idea pricing")
	}
	idea.Price = price
	idea.ExclusiveOptionPrice = exclusivePrice
	return idea, nil
}

func normalizePricing(price decimal.Decimal, exclusive decimal.NullDecimal) (decimal.Decimal, decimal.NullDecimal, error) {
	price, err := normalizePrice(price)
	if err != nil {
		return price, exclusive, err
	}
	exclusive, err = normalizeOptionalPrice(exclusive)
	return price, exclusive, err
}

func (s *IdeaService) ownedIdea(ctx context.Context, identity models.Identity, ideaID uint) (*models.Idea, error) {
	if !identity.Is(models.RoleSeller) {
		return nil, apperrors.Forbidden(MsgSellerOnly)
	}

	idea, err := loadIdea(s.db.WithContext(ctx), ideaID)
	if err != nil {
		return nil, internalError(err, "failed to load idea")
	}
	if idea.SellerID != identity.UserID {
		return nil, apperrors.Forbidden(MsgNotIdeaOwner)
	}
	return idea, nil
}
