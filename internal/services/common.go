// internal/services/common.go
package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/utils"
)

// Business messages returned to API consumers.
const (
	MsgBuyerOnly                = "buyers only"
	MsgSellerOnly               = "sellers only"
	MsgAccountSuspended         = "account suspended"
	MsgIdeaNotFound             = "idea not found"
	MsgIdeaNotPurchasable       = "idea not purchasable"
	MsgExclusiveNotAvailable    = "exclusive option not available"
	MsgAlreadyPurchased         = "already purchased"
	MsgCannotDowngrade          = "cannot downgrade exclusive"
	MsgExclusiveTaken           = "exclusive already taken"
	MsgExclusiveNotFound        = "exclusive not found"
	MsgNotExclusiveOwner        = "not the exclusive owner"
	MsgExclusiveNotListed       = "exclusive not listed"
	MsgAlreadyOwner             = "already owner"
	MsgResaleNotAllowed         = "resale not allowed"
	MsgInvalidPrice             = "price must be positive"
	MsgPriceTooLarge            = "price exceeds maximum"
	MsgListingNotFound          = "listing not found"
	MsgNotListingSeller         = "not the listing seller"
	MsgNotIdeaOwner             = "not the idea owner"
	MsgInvalidStatusTransition  = "invalid status transition"
	MsgUserNotFound             = "user not found"
	MsgInvalidCredentials       = "invalid credentials"
	MsgEmailTaken               = "email already registered"
	MsgInvalidToken             = "invalid token"
	MsgRegistrationRoleRejected = "role must be BUYER or SELLER"
)

func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "validation failed")
	}
	return nil
}

// loadActiveUser fails with Forbidden when the caller's account is suspended
// and Unauthenticated when it no longer exists.
func loadActiveUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthenticated(MsgUserNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive() {
		return nil, apperrors.Forbidden(MsgAccountSuspended)
	}
	return &user, nil
}

func loadIdea(tx *gorm.DB, ideaID uint) (*models.Idea, error) {
	var idea models.Idea
	if err := tx.First(&idea, ideaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(MsgIdeaNotFound)
		}
		return nil, fmt.Errorf("load idea: %w", err)
	}
	return &idea, nil
}

// findExclusiveDeal returns the exclusive deal on an idea, or nil.
func findExclusiveDeal(tx *gorm.DB, ideaID uint) (*models.Deal, error) {
	var deals []models.Deal
	if err := tx.Where("idea_id = ? AND is_exclusive = ?", ideaID, true).Limit(1).Find(&deals).Error; err != nil {
		return nil, fmt.Errorf("load exclusive deal: %w", err)
	}
	if len(deals) == 0 {
		return nil, nil
	}
	return &deals[0], nil
}

func findBuyerDeal(tx *gorm.DB, buyerID, ideaID uint) (*models.Deal, error) {
	var deals []models.Deal
	if err := tx.Where("buyer_id = ? AND idea_id = ?", buyerID, ideaID).Limit(1).Find(&deals).Error; err != nil {
		return nil, fmt.Errorf("load deal: %w", err)
	}
	if len(deals) == 0 {
		return nil, nil
	}
	return &deals[0], nil
}

// createAuditLog writes an audit row on tx so it commits or rolls back with
// the change it describes.
func createAuditLog(tx *gorm.DB, userID uint, action, resourceType string, resourceID uint, details models.JSONMap) error {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		Details:      details,
	}
	if err := tx.Create(auditLog).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// maxPrice is the largest value a decimal(12,2) money column holds.
var maxPrice = decimal.New(999999999999, -2)

// normalizePrice rounds to cents, the stored precision, and checks the
// result is positive and fits the column.
func normalizePrice(price decimal.Decimal) (decimal.Decimal, error) {
	price = price.Round(2)
	if !price.IsPositive() {
		return price, apperrors.InvalidState(MsgInvalidPrice)
	}
	if price.GreaterThan(maxPrice) {
		return price, apperrors.InvalidState(MsgPriceTooLarge)
	}
	return price, nil
}

func normalizeOptionalPrice(price decimal.NullDecimal) (decimal.NullDecimal, error) {
	if !price.Valid {
		return price, nil
	}
	d, err := normalizePrice(price.Decimal)
	if err != nil {
		return price, err
	}
	return decimal.NewNullDecimal(d), nil
}

// internalError keeps typed errors intact and wraps anything else.
func internalError(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperrors.As(err) != nil {
		return err
	}
	return apperrors.Internal(err, message)
}
