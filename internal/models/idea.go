// internal/models/idea.go
package models

import (
	"github.com/shopspring/decimal"
)

type Idea struct {
	BaseModel
	SellerID             uint                `json:"seller_id" gorm:"not null;index"`
	Title                string              `json:"title" gorm:"size:255;not null"`
	Summary              string              `json:"summary" gorm:"type:text;not null"`
	Body                 string              `json:"body" gorm:"type:text;not null"`
	Price                decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	ExclusiveOptionPrice decimal.NullDecimal `json:"exclusive_option_price" gorm:"type:decimal(12,2)"`
	ResaleAllowed        bool                `json:"resale_allowed" gorm:"not null"`
	Status               IdeaStatus          `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TotalScore           float64             `json:"total_score" gorm:"not null;default:0"`

	// Relationships
	Seller *User  `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Deals  []Deal `json:"-" gorm:"foreignKey:IdeaID;constraint:OnDelete:CASCADE"`
}

// HasExclusiveOption reports whether exclusivity can be bought for this idea.
func (i *Idea) HasExclusiveOption() bool {
	return i.ExclusiveOptionPrice.Valid
}

func (i *Idea) Purchasable() bool {
	return i.Status.Purchasable()
}
