// internal/models/resale.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResaleListing is an open offer to sell the exclusive right on an idea.
// There is at most one per idea; re-listing overwrites it.
type ResaleListing struct {
	IdeaID    uint            `json:"idea_id" gorm:"primaryKey;autoIncrement:false"`
	SellerID  uint            `json:"seller_id" gorm:"not null;index"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ListedAt  time.Time       `json:"listed_at" gorm:"not null;index"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relationships
	Idea *Idea `json:"idea,omitempty" gorm:"foreignKey:IdeaID;constraint:OnDelete:CASCADE"`
}
