// internal/services/resale_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/database"
	"github.com/javajoker/ifm-backend/internal/metrics"
	"github.com/javajoker/ifm-backend/internal/models"
)

// ResaleService lets the exclusive holder of an idea offer the right for
// sale and transfers it to a buyer.
type ResaleService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

type ListResaleRequest struct {
	IdeaID uint            `json:"idea_id" validate:"required"`
	Price  decimal.Decimal `json:"price"`
}

type BuyResaleRequest struct {
	IdeaID uint `json:"idea_id" validate:"required"`
}

// MarketListing is one open offer on the resale market.
type MarketListing struct {
	IdeaID   uint            `json:"idea_id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	SellerID uint            `json:"seller_id"`
	ListedAt time.Time       `json:"listed_at"`
}

func NewResaleService(db *gorm.DB, m *metrics.Metrics) *ResaleService {
	return &ResaleService{db: db, metrics: m}
}

// ListExclusiveForResale opens or overwrites the offer for an idea's
// exclusive right. Only the current holder may list.
func (s *ResaleService) ListExclusiveForResale(ctx context.Context, identity models.Identity, req *ListResaleRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	price, err := normalizePrice(req.Price)
	if err != nil {
		return err
	}
	req.Price = price

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := loadActiveUser(tx, identity.UserID); err != nil {
			return err
		}

		idea, err := loadIdea(tx, req.IdeaID)
		if err != nil {
			return err
		}

		exclusive, err := findExclusiveDeal(database.ForUpdate(tx), idea.ID)
		if err != nil {
			return err
		}
		if exclusive == nil {
			return apperrors.NotFound(MsgExclusiveNotFound)
		}
		if exclusive.BuyerID != identity.UserID {
			return apperrors.Forbidden(MsgNotExclusiveOwner)
		}
		if !idea.ResaleAllowed {
			return apperrors.InvalidState(MsgResaleNotAllowed)
		}

		listing := &models.ResaleListing{
			IdeaID:   idea.ID,
			SellerID: identity.UserID,
			Price:    req.Price,
			ListedAt: time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idea_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"seller_id", "price", "listed_at", "updated_at"}),
		}).Create(listing).Error; err != nil {
			return fmt.Errorf("upsert listing: %w", err)
		}

		if err := tx.Model(&models.Deal{}).Where("id = ?", exclusive.ID).
			Update("status", models.DealStatusListed).Error; err != nil {
			return fmt.Errorf("mark deal listed: %w", err)
		}

		return createAuditLog(tx, identity.UserID, models.AuditResaleListed, "idea", idea.ID, models.JSONMap{
			"deal_id": exclusive.ID,
			"price":   req.Price.String(),
		})
	})
	if err != nil {
		return internalError(err, "failed to list exclusive")
	}

	s.metrics.RecordResaleOperation("list")
	logrus.WithFields(logrus.Fields{
		"idea_id":   req.IdeaID,
		"seller_id": identity.UserID,
		"price":     req.Price.String(),
	}).Info("Exclusive listed for resale")
	return nil
}

// WithdrawListing closes the caller's offer and returns the deal to COMPLETED.
func (s *ResaleService) WithdrawListing(ctx context.Context, identity models.Identity, ideaID uint) error {
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		listing, err := findListing(database.ForUpdate(tx), ideaID)
		if err != nil {
			return err
		}
		if listing == nil {
			return apperrors.NotFound(MsgListingNotFound)
		}
		if listing.SellerID != identity.UserID {
			return apperrors.Forbidden(MsgNotListingSeller)
		}

		if err := tx.Delete(&models.ResaleListing{}, "idea_id = ?", ideaID).Error; err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		if err := tx.Model(&models.Deal{}).
			Where("idea_id = ? AND buyer_id = ? AND is_exclusive = ?", ideaID, identity.UserID, true).
			Update("status", models.DealStatusCompleted).Error; err != nil {
			return fmt.Errorf("restore deal status: %w", err)
		}

		return createAuditLog(tx, identity.UserID, models.AuditResaleWithdrawn, "idea", ideaID, nil)
	})
	if err != nil {
		return internalError(err, "failed to withdraw listing")
	}

	s.metrics.RecordResaleOperation("withdraw")
	return nil
}

// BuyListedExclusive moves the exclusive deal to the caller. The exclusive
// row is reassigned in place; the buyer's own standard deal on the idea, if
// any, is removed first so the per-buyer uniqueness holds.
func (s *ResaleService) BuyListedExclusive(ctx context.Context, identity models.Identity, req *BuyResaleRequest) error {
	if !identity.Is(models.RoleBuyer) {
		return apperrors.Forbidden(MsgBuyerOnly)
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	var previousHolder uint
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := loadActiveUser(tx, identity.UserID); err != nil {
			return err
		}

		listing, err := findListing(database.ForUpdate(tx), req.IdeaID)
		if err != nil {
			return err
		}
		if listing == nil {
			return apperrors.NotFound(MsgExclusiveNotListed)
		}

		exclusive, err := findExclusiveDeal(database.ForUpdate(tx), req.IdeaID)
		if err != nil {
			return err
		}
		if exclusive == nil || exclusive.BuyerID != listing.SellerID {
			// The seller lost the right after listing. The stale offer is
			// dropped once this transaction has rolled back.
			return errOrphanListing
		}
		if exclusive.BuyerID == identity.UserID {
			return apperrors.Conflict(MsgAlreadyOwner)
		}
		previousHolder = exclusive.BuyerID

		if err := tx.Where("buyer_id = ? AND idea_id = ? AND is_exclusive = ?", identity.UserID, req.IdeaID, false).
			Delete(&models.Deal{}).Error; err != nil {
			return fmt.Errorf("drop standard deal: %w", err)
		}

		res := tx.Model(&models.Deal{}).
			Where("id = ? AND buyer_id = ? AND is_exclusive = ?", exclusive.ID, exclusive.BuyerID, true).
			Updates(map[string]interface{}{
				"buyer_id": identity.UserID,
				"status":   models.DealStatusCompleted,
				"amount":   listing.Price,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflict(MsgExclusiveTaken)
		}

		if err := tx.Delete(&models.ResaleListing{}, "idea_id = ?", req.IdeaID).Error; err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}

		return createAuditLog(tx, identity.UserID, models.AuditResaleTransferred, "deal", exclusive.ID, models.JSONMap{
			"idea_id":   req.IdeaID,
			"from_user": exclusive.BuyerID,
			"price":     listing.Price.String(),
		})
	})

	if errors.Is(err, errOrphanListing) {
		if _, perr := s.removeOrphans(ctx, &req.IdeaID); perr != nil {
			logrus.WithError(perr).WithField("idea_id", req.IdeaID).Warn("Failed to remove orphan listing")
		}
		return apperrors.NotFound(MsgExclusiveNotListed)
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.CodeConflict, err, MsgExclusiveTaken)
		}
		return internalError(err, "failed to buy exclusive")
	}

	s.metrics.RecordResaleOperation("transfer")
	logrus.WithFields(logrus.Fields{
		"idea_id":   req.IdeaID,
		"from_user": previousHolder,
		"to_user":   identity.UserID,
	}).Info("Exclusive transferred")
	return nil
}

var errOrphanListing = errors.New("listing seller no longer holds the exclusive")

// GetMarket lists open offers, newest first. Offers whose seller no longer
// holds the exclusive right are left out.
func (s *ResaleService) GetMarket(ctx context.Context) ([]MarketListing, error) {
	out := make([]MarketListing, 0)
	err := s.db.WithContext(ctx).
		Table("resale_listings AS rl").
		Select("rl.idea_id, i.title, rl.price, rl.seller_id, rl.listed_at").
		Joins("JOIN ideas i ON i.id = rl.idea_id").
		Joins("JOIN deals d ON d.idea_id = rl.idea_id AND d.is_exclusive = ? AND d.buyer_id = rl.seller_id", true).
		Order("rl.listed_at DESC").
		Order("rl.idea_id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load market")
	}
	return out, nil
}

// PruneOrphanListings deletes every offer whose seller no longer holds the
// exclusive right and returns how many were removed.
func (s *ResaleService) PruneOrphanListings(ctx context.Context) (int64, error) {
	n, err := s.removeOrphans(ctx, nil)
	if err != nil {
		return 0, apperrors.Internal(err, "failed to prune listings")
	}
	if n > 0 {
		s.metrics.RecordResaleOperation("prune")
		logrus.WithField("removed", n).Info("Pruned orphan resale listings")
	}
	return n, nil
}

func (s *ResaleService) removeOrphans(ctx context.Context, ideaID *uint) (int64, error) {
	var removed int64
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		q := tx.Model(&models.ResaleListing{}).
			Where("NOT EXISTS (SELECT 1 FROM deals d WHERE d.idea_id = resale_listings.idea_id AND d.is_exclusive = ? AND d.buyer_id = resale_listings.seller_id)", true)
		if ideaID != nil {
			q = q.Where("idea_id = ?", *ideaID)
		}

		var orphans []models.ResaleListing
		if err := q.Find(&orphans).Error; err != nil {
			return err
		}
		for _, l := range orphans {
			if err := tx.Delete(&models.ResaleListing{}, "idea_id = ?", l.IdeaID).Error; err != nil {
				return err
			}
			if err := createAuditLog(tx, l.SellerID, models.AuditResaleOrphanRemoved, "idea", l.IdeaID, models.JSONMap{
				"price": l.Price.String(),
			}); err != nil {
				return err
			}
		}
		removed = int64(len(orphans))
		return nil
	})
	return removed, err
}

func findListing(tx *gorm.DB, ideaID uint) (*models.ResaleListing, error) {
	var listings []models.ResaleListing
	if err := tx.Where("idea_id = ?", ideaID).Limit(1).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if len(listings) == 0 {
		return nil, nil
	}
	return &listings[0], nil
}
