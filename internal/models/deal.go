// internal/models/deal.go
package models

import (
	"github.com/shopspring/decimal"
)

// Deal is a buyer's standing on an idea. A buyer has at most one row per
// idea, and at most one row per idea carries is_exclusive. The second rule
// is a partial unique index created by database.RunMigrations.
type Deal struct {
	BaseModel
	BuyerID     uint            `json:"buyer_id" gorm:"not null;uniqueIndex:ux_deals_buyer_idea,priority:1"`
	IdeaID      uint            `json:"idea_id" gorm:"not null;uniqueIndex:ux_deals_buyer_idea,priority:2;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	IsExclusive bool            `json:"is_exclusive" gorm:"not null;default:false"`
	Status      DealStatus      `json:"status" gorm:"type:varchar(20);not null;default:'COMPLETED'"`

	// Relationships
	Idea  *Idea `json:"idea,omitempty" gorm:"foreignKey:IdeaID"`
	Buyer *User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}

func (d *Deal) IsListed() bool {
	return d.Status == DealStatusListed
}
