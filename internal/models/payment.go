package models

import (
	"time"
)

const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentExpired  = "EXPIRED"
	PaymentRefunded = "REFUNDED"
)

// Payment is one PIX charge against an order. An order may accumulate several
// payments over time (expired retries) but at most one may be PENDING.
type Payment struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint       `gorm:"column:order_id;not null;index:idx_payments_order" json:"order_id"`
	Method     string     `gorm:"column:method;size:20;not null;default:pix" json:"method"`
	ProviderID string     `gorm:"column:provider_id;size:100;uniqueIndex:idx_payments_provider" json:"provider_id"`
	Amount     float64    `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	QRCode     string     `gorm:"column:qr_code;type:text" json:"qr_code,omitempty"`
	CopyPaste  string     `gorm:"column:copy_paste;type:text" json:"copy_paste,omitempty"`
	Status     string     `gorm:"column:status;size:20;not null;default:PENDING;index" json:"status"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	PaidAt     *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
