// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/config"
	"github.com/javajoker/ifm-backend/internal/database"
	"github.com/javajoker/ifm-backend/internal/metrics"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/utils"
)

// AuthService issues and resolves bearer tokens.
type AuthService struct {
	db      *gorm.DB
	cfg     config.JWTConfig
	metrics *metrics.Metrics
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,password"`
	Role     models.Role `json:"role" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg config.JWTConfig, m *metrics.Metrics) *AuthService {
	utils.SetJWTSecret(cfg.SecretKey)
	if cfg.Issuer != "" {
		utils.SetJWTIssuer(cfg.Issuer)
	}
	return &AuthService{db: db, cfg: cfg, metrics: m}
}

// Register creates a buyer or seller account. Admins only come from seeding.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Role != models.RoleBuyer && req.Role != models.RoleSeller {
		return nil, apperrors.Validation(MsgRegistrationRoleRejected)
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to register")
	}
	if count > 0 {
		return nil, apperrors.Conflict(MsgEmailTaken)
	}

	user := &models.User{
		Email:  req.Email,
		Role:   req.Role,
		Status: models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Internal(err, "failed to hash password")
	}

	if err := db.Create(user).Error; err != nil {
		// Two registrations for one email can pass the count check together.
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Conflict(MsgEmailTaken)
		}
		return nil, apperrors.Internal(err, "failed to create user")
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordAuthAttempt(false)
			return nil, apperrors.Unauthenticated(MsgInvalidCredentials)
		}
		return nil, apperrors.Internal(err, "failed to load user")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		s.metrics.RecordAuthAttempt(false)
		return nil, apperrors.Unauthenticated(MsgInvalidCredentials)
	}
	if !user.IsActive() {
		s.metrics.RecordAuthAttempt(false)
		return nil, apperrors.Forbidden(MsgAccountSuspended)
	}

	s.metrics.RecordAuthAttempt(true)
	return s.issue(&user)
}

// ResolveToken verifies a bearer token and returns the identity it carries.
// The role comes from the token; the account itself is checked by the
// operations that need it.
func (s *AuthService) ResolveToken(token string) (models.Identity, error) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return models.Identity{}, apperrors.Wrap(apperrors.CodeUnauthenticated, err, MsgInvalidToken)
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.Identity{}, apperrors.Wrap(apperrors.CodeUnauthenticated, err, MsgInvalidToken)
	}
	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return models.Identity{}, apperrors.Unauthenticated(MsgInvalidToken)
	}

	return models.Identity{UserID: userID, Role: role}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, identity models.Identity) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, identity.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthenticated(MsgUserNotFound)
		}
		return nil, apperrors.Internal(err, "failed to load user")
	}
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, string(user.Role), s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("sign token: %w", err), "failed to generate access token")
	}

	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}
