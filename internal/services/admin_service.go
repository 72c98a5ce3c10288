// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/database"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type AdminDashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsers      int64 `json:"active_users"`
	SuspendedUsers   int64 `json:"suspended_users"`
	TotalIdeas       int64 `json:"total_ideas"`
	PurchasableIdeas int64 `json:"purchasable_ideas"`
	TotalDeals       int64 `json:"total_deals"`
	ExclusiveDeals   int64 `json:"exclusive_deals"`
	OpenListings     int64 `json:"open_listings"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=ACTIVE SUSPENDED"`
	Reason string            `json:"reason,omitempty" validate:"max=500"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func requireAdmin(identity models.Identity) error {
	if !identity.Is(models.RoleAdmin) {
		return apperrors.Forbidden("admins only")
	}
	return nil
}

// Health pings the database.
func (s *AdminService) Health(ctx context.Context, identity models.Identity) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	if err := database.Ping(ctx, s.db); err != nil {
		return apperrors.Internal(err, "database unavailable")
	}
	return nil
}

func (s *AdminService) GetDashboardStats(ctx context.Context, identity models.Identity) (*AdminDashboardStats, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{})},
		{&stats.ActiveUsers, db.Model(&models.User{}).Where("status = ?", models.UserStatusActive)},
		{&stats.SuspendedUsers, db.Model(&models.User{}).Where("status = ?", models.UserStatusSuspended)},
		{&stats.TotalIdeas, db.Model(&models.Idea{})},
		{&stats.PurchasableIdeas, db.Model(&models.Idea{}).Where("status IN ?", models.PurchasableIdeaStatuses)},
		{&stats.TotalDeals, db.Model(&models.Deal{})},
		{&stats.ExclusiveDeals, db.Model(&models.Deal{}).Where("is_exclusive = ?", true)},
		{&stats.OpenListings, db.Model(&models.ResaleListing{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperrors.Internal(err, "failed to load stats")
		}
	}

	return stats, nil
}

// UpdateUserStatus suspends or reactivates an account. Admin accounts are
// left alone.
func (s *AdminService) UpdateUserStatus(ctx context.Context, identity models.Identity, userID uint, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(MsgUserNotFound)
			}
			return fmt.Errorf("load user: %w", err)
		}
		if user.Role == models.RoleAdmin {
			return apperrors.Forbidden("cannot modify admin user status")
		}

		oldStatus := user.Status
		if err := tx.Model(&user).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("update user status: %w", err)
		}
		user.Status = req.Status

		return createAuditLog(tx, identity.UserID, models.AuditUserStatusChanged, "user", user.ID, models.JSONMap{
			"from":   string(oldStatus),
			"to":     string(req.Status),
			"reason": req.Reason,
		})
	})
	if err != nil {
		return nil, internalError(err, "failed to update user status")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"status":   user.Status,
		"admin_id": identity.UserID,
	}).Info("User status changed")
	return &user, nil
}

func (s *AdminService) GetAuditLogs(ctx context.Context, identity models.Identity, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, 0, err
	}
	params = utils.NormalizePagination(params)

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to count audit logs")
	}

	allowedSortFields := []string{"created_at", "action"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	logs := make([]models.AuditLog, 0)
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "failed to fetch audit logs")
	}

	return logs, total, nil
}
