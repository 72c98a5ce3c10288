// internal/models/audit.go
package models

import "time"

// Audit actions written alongside deal and listing mutations.
const (
	AuditDealCreated         = "deal.created"
	AuditDealUpgraded        = "deal.upgraded"
	AuditResaleListed        = "resale.listed"
	AuditResaleWithdrawn     = "resale.withdrawn"
	AuditResaleTransferred   = "resale.transferred"
	AuditResaleOrphanRemoved = "resale.orphan_removed"
	AuditUserStatusChanged   = "user.status_changed"
)

type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       *uint     `json:"user_id" gorm:"index"`
	Action       string    `json:"action" gorm:"size:100;not null;index"`
	ResourceType string    `json:"resource_type" gorm:"size:50;not null"`
	ResourceID   *uint     `json:"resource_id"`
	Details      JSONMap   `json:"details" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
