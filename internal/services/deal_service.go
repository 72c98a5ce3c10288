// internal/services/deal_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/database"
	"github.com/javajoker/ifm-backend/internal/metrics"
	"github.com/javajoker/ifm-backend/internal/models"
)

// DealService decides and applies purchases and exclusivity upgrades.
type DealService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

type CreateDealRequest struct {
	IdeaID      uint `json:"idea_id" validate:"required"`
	IsExclusive bool `json:"is_exclusive"`
}

type DealResult struct {
	OK           bool `json:"ok"`
	DealID       uint `json:"deal_id"`
	AlreadyOwned bool `json:"already_owned"`
	Upgraded     bool `json:"upgraded"`
}

// errDealChanged means the row moved between the read and the conditional write.
var errDealChanged = errors.New("deal changed concurrently")

func NewDealService(db *gorm.DB, m *metrics.Metrics) *DealService {
	return &DealService{db: db, metrics: m}
}

type dealAction int

const (
	dealActionNone dealAction = iota
	dealActionInsert
	dealActionUpgrade
)

// dealState is what the decision table looks at: the buyer's own deal on the
// idea, if any, and whoever currently holds the exclusive right (0 if nobody).
type dealState struct {
	existing        *models.Deal
	exclusiveHolder uint
}

// decideDeal applies the purchase decision table. It assumes the exclusive
// option exists whenever wantExclusive is set.
func decideDeal(buyerID uint, state dealState, wantExclusive bool) (dealAction, error) {
	takenByOther := state.exclusiveHolder != 0 && state.exclusiveHolder != buyerID

	switch {
	case state.existing == nil:
		if wantExclusive && takenByOther {
			return dealActionNone, apperrors.Conflict(MsgExclusiveTaken)
		}
		return dealActionInsert, nil
	case !state.existing.IsExclusive && !wantExclusive:
		return dealActionNone, apperrors.Conflict(MsgAlreadyPurchased)
	case !state.existing.IsExclusive && wantExclusive:
		if takenByOther {
			return dealActionNone, apperrors.Conflict(MsgExclusiveTaken)
		}
		return dealActionUpgrade, nil
	case state.existing.IsExclusive && !wantExclusive:
		return dealActionNone, apperrors.Conflict(MsgCannotDowngrade)
	default:
		return dealActionNone, nil
	}
}

// CreateOrUpdateDeal buys an idea for the caller or upgrades their existing
// deal to exclusive. The check, decision and write run in one transaction.
// If the write loses a race on a unique index, the state is re-read and the
// decision made again, once.
func (s *DealService) CreateOrUpdateDeal(ctx context.Context, identity models.Identity, req *CreateDealRequest) (*DealResult, error) {
	if !identity.Is(models.RoleBuyer) {
		return nil, apperrors.Forbidden(MsgBuyerOnly)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var result *DealResult
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := loadActiveUser(tx, identity.UserID); err != nil {
			return err
		}

		idea, err := loadIdea(tx, req.IdeaID)
		if err != nil {
			return err
		}
		if !idea.Purchasable() {
			return apperrors.InvalidState(MsgIdeaNotPurchasable)
		}
		if req.IsExclusive && !idea.HasExclusiveOption() {
			return apperrors.InvalidState(MsgExclusiveNotAvailable)
		}

		result, err = s.applyDeal(tx, identity.UserID, idea, req.IsExclusive)
		return err
	})
	if err != nil {
		if apperrors.Is(err, apperrors.CodeConflict) || apperrors.Is(err, apperrors.CodeInvalidState) {
			s.metrics.RecordDealOutcome(metrics.OutcomeRejected)
		}
		return nil, internalError(err, "failed to process deal")
	}

	switch {
	case result.Upgraded:
		s.metrics.RecordDealOutcome(metrics.OutcomeUpgraded)
	case result.AlreadyOwned:
		s.metrics.RecordDealOutcome(metrics.OutcomeAlreadyOwned)
	default:
		s.metrics.RecordDealOutcome(metrics.OutcomeCreated)
	}
	return result, nil
}

func (s *DealService) applyDeal(tx *gorm.DB, buyerID uint, idea *models.Idea, wantExclusive bool) (*DealResult, error) {
	for attempt := 0; ; attempt++ {
		state, err := loadDealState(tx, buyerID, idea.ID)
		if err != nil {
			return nil, err
		}

		action, err := decideDeal(buyerID, state, wantExclusive)
		if err != nil {
			return nil, err
		}

		var result *DealResult
		// Each write gets its own savepoint so a constraint violation leaves
		// the outer transaction usable for the re-read.
		err = tx.Transaction(func(sp *gorm.DB) error {
			var werr error
			result, werr = s.writeDeal(sp, buyerID, idea, state, action, wantExclusive)
			return werr
		})
		if err == nil {
			return result, nil
		}
		if !database.IsUniqueViolation(err) && !errors.Is(err, errDealChanged) {
			return nil, err
		}
		if attempt > 0 {
			logrus.WithFields(logrus.Fields{
				"buyer_id": buyerID,
				"idea_id":  idea.ID,
			}).Warn("Deal write conflicted again after re-read")
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, MsgExclusiveTaken)
		}

		s.metrics.RecordRaceRecovery()
		logrus.WithFields(logrus.Fields{
			"buyer_id":       buyerID,
			"idea_id":        idea.ID,
			"want_exclusive": wantExclusive,
		}).Warn("Deal write hit a unique constraint, re-reading state")
	}
}

func loadDealState(tx *gorm.DB, buyerID, ideaID uint) (dealState, error) {
	existing, err := findBuyerDeal(tx, buyerID, ideaID)
	if err != nil {
		return dealState{}, err
	}

	state := dealState{existing: existing}
	if existing != nil && existing.IsExclusive {
		state.exclusiveHolder = buyerID
		return state, nil
	}

	exclusive, err := findExclusiveDeal(tx, ideaID)
	if err != nil {
		return dealState{}, err
	}
	if exclusive != nil {
		state.exclusiveHolder = exclusive.BuyerID
	}
	return state, nil
}

func (s *DealService) writeDeal(tx *gorm.DB, buyerID uint, idea *models.Idea, state dealState, action dealAction, wantExclusive bool) (*DealResult, error) {
	switch action {
	case dealActionNone:
		return &DealResult{OK: true, DealID: state.existing.ID, AlreadyOwned: true}, nil

	case dealActionInsert:
		amount := idea.Price
		if wantExclusive {
			amount = idea.ExclusiveOptionPrice.Decimal
		}
		deal := &models.Deal{
			BuyerID:     buyerID,
			IdeaID:      idea.ID,
			Amount:      amount,
			IsExclusive: wantExclusive,
			Status:      models.DealStatusCompleted,
		}
		if err := tx.Create(deal).Error; err != nil {
			return nil, err
		}
		if err := createAuditLog(tx, buyerID, models.AuditDealCreated, "deal", deal.ID, models.JSONMap{
			"idea_id":      idea.ID,
			"amount":       amount.String(),
			"is_exclusive": wantExclusive,
		}); err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"deal_id":      deal.ID,
			"buyer_id":     buyerID,
			"idea_id":      idea.ID,
			"is_exclusive": wantExclusive,
		}).Info("Deal created")
		return &DealResult{OK: true, DealID: deal.ID}, nil

	case dealActionUpgrade:
		amount := idea.ExclusiveOptionPrice.Decimal
		res := tx.Model(&models.Deal{}).
			Where("id = ? AND is_exclusive = ?", state.existing.ID, false).
			Updates(map[string]interface{}{
				"is_exclusive": true,
				"amount":       amount,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, errDealChanged
		}
		if err := createAuditLog(tx, buyerID, models.AuditDealUpgraded, "deal", state.existing.ID, models.JSONMap{
			"idea_id":         idea.ID,
			"previous_amount": state.existing.Amount.String(),
			"amount":          amount.String(),
		}); err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"deal_id":  state.existing.ID,
			"buyer_id": buyerID,
			"idea_id":  idea.ID,
		}).Info("Deal upgraded to exclusive")
		return &DealResult{OK: true, DealID: state.existing.ID, AlreadyOwned: true, Upgraded: true}, nil
	}

	return nil, fmt.Errorf("unknown deal action %d", action)
}
