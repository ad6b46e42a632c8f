package models

import (
	"time"
)

const (
	WithdrawalPending    = "PENDING"
	WithdrawalProcessing = "PROCESSING"
	WithdrawalCompleted  = "COMPLETED"
	WithdrawalFailed     = "FAILED"
	WithdrawalRejected   = "REJECTED"
)

// Withdrawal is a PIX payout request drawn against a user's realized
// commission/revenue rows.
type Withdrawal struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;index:idx_withdrawals_user" json:"user_id"`
	Amount      float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	PixKey      string    `gorm:"column:pix_key;size:140;not null" json:"pix_key"`
	PixKeyType  string    `gorm:"column:pix_key_type;size:20;not null" json:"pix_key_type"`
	Status      string    `gorm:"column:status;size:20;not null;default:PENDING;index" json:"status"`
	ProviderRef string    `gorm:"column:provider_ref;size:100;index:idx_withdrawals_provider" json:"provider_ref,omitempty"`
	Receipt     string    `gorm:"column:receipt;type:text" json:"receipt,omitempty"`
	Comment     string    `gorm:"column:comment;size:255" json:"comment,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

// Outstanding reports whether the withdrawal still reserves funds.
func (w *Withdrawal) Outstanding() bool {
	return w.Status == WithdrawalPending || w.Status == WithdrawalProcessing
}
