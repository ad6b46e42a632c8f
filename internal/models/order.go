package models

import (
	"time"
)

// Order statuses. Transitions are enforced in services.OrderService, not here.
const (
	OrderPending    = "PENDING"
	OrderPaid       = "PAID"
	OrderInProgress = "IN_PROGRESS"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
	OrderDisputed   = "DISPUTED"
)

// Cancellation initiators recorded on the order.
const (
	CancelledByClient = "CLIENT"
	CancelledByAdmin  = "ADMIN"
	CancelledBySystem = "AUTO_TIMEOUT"
)

type Order struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint    `gorm:"column:user_id;not null;index:idx_orders_user" json:"user_id"`
	BoosterID   *uint   `gorm:"column:booster_id;index:idx_orders_booster" json:"booster_id"`
	Game        string  `gorm:"column:game;size:50;not null" json:"game"`
	GameMode    string  `gorm:"column:game_mode;size:50;not null" json:"game_mode"`
	CurrentRank int     `gorm:"column:current_rank;not null" json:"current_rank"`
	TargetRank  int     `gorm:"column:target_rank;not null" json:"target_rank"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	Total       float64 `gorm:"column:total;type:decimal(20,2);not null" json:"total"`
	Status      string  `gorm:"column:status;size:20;not null;default:PENDING;index:idx_orders_status" json:"status"`

	// Cancellation audit fields. Empty unless Status is CANCELLED.
	CancelReason    string `gorm:"column:cancel_reason;size:255" json:"cancel_reason,omitempty"`
	CancelledBy     string `gorm:"column:cancelled_by;size:20" json:"cancelled_by,omitempty"`
	RefundProcessed bool   `gorm:"column:refund_processed;default:false" json:"refund_processed"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Terminal reports whether the order can no longer change state.
func (o *Order) Terminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderCancelled
}
