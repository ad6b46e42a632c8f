package models

import (
	"time"
)

const (
	DisputeOpen            = "OPEN"
	DisputeResolvedRefund  = "RESOLVED_REFUND"
	DisputeResolvedPayout  = "RESOLVED_PAYOUT"
	DisputeResolvedPartial = "RESOLVED_PARTIAL"
	DisputeCancelled       = "CANCELLED"
)

// Dispute is the manual-adjudication record for a conflicted order. Resolving
// it never moves money; refunds and payouts remain explicit admin actions.
type Dispute struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint       `gorm:"column:order_id;not null;uniqueIndex:idx_disputes_order" json:"order_id"`
	CreatorID  uint       `gorm:"column:creator_id;not null" json:"creator_id"`
	Reason     string     `gorm:"column:reason;type:text;not null" json:"reason"`
	Status     string     `gorm:"column:status;size:20;not null;default:OPEN;index" json:"status"`
	Resolution string     `gorm:"column:resolution;type:text" json:"resolution,omitempty"`
	ResolvedBy *uint      `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Dispute) TableName() string {
	return "disputes"
}

func (d *Dispute) Resolved() bool {
	return d.Status != DisputeOpen
}

// DisputeMessage is one entry of the append-only dispute thread.
type DisputeMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DisputeID uint      `gorm:"column:dispute_id;not null;index:idx_dispute_messages_dispute" json:"dispute_id"`
	UserID    uint      `gorm:"column:user_id;not null" json:"user_id"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (DisputeMessage) TableName() string {
	return "dispute_messages"
}
