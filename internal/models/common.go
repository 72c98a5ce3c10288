// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and amounts are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONMap is a JSON object persisted in a text column so the same schema
// works on postgres and sqlite.
type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap source %T", value)
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts the canonical upper-case spelling only.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusSuspended
}

type IdeaStatus string

const (
	IdeaStatusDraft     IdeaStatus = "DRAFT"
	IdeaStatusSubmitted IdeaStatus = "SUBMITTED"
	IdeaStatusActive    IdeaStatus = "ACTIVE"
	IdeaStatusArchived  IdeaStatus = "ARCHIVED"
)

// PurchasableIdeaStatuses lists the statuses in which an idea accepts new deals.
var PurchasableIdeaStatuses = []IdeaStatus{IdeaStatusSubmitted, IdeaStatusActive}

func (s IdeaStatus) Valid() bool {
	switch s {
	case IdeaStatusDraft, IdeaStatusSubmitted, IdeaStatusActive, IdeaStatusArchived:
		return true
	}
	return false
}

func (s IdeaStatus) Purchasable() bool {
	return s == IdeaStatusSubmitted || s == IdeaStatusActive
}

// CanTransitionTo encodes the seller-driven idea lifecycle. ARCHIVED is terminal.
func (s IdeaStatus) CanTransitionTo(next IdeaStatus) bool {
	if s == next || !next.Valid() {
		return false
	}
	switch s {
	case IdeaStatusDraft:
		return next != IdeaStatusDraft
	case IdeaStatusSubmitted:
		return next == IdeaStatusActive || next == IdeaStatusArchived
	case IdeaStatusActive:
		return next == IdeaStatusSubmitted || next == IdeaStatusArchived
	}
	return false
}

type DealStatus string

const (
	DealStatusCompleted DealStatus = "COMPLETED"
	DealStatusListed    DealStatus = "LISTED"
)
