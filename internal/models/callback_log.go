package models

import (
	"time"
)

// CallbackLog keeps the raw request/response of every provider webhook
// delivery for reconciliation and support.
type CallbackLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType  string    `gorm:"column:event_type;size:50;index" json:"event_type"`
	ProviderID string    `gorm:"column:provider_id;size:100;index" json:"provider_id"`
	Request    string    `gorm:"column:request;type:longtext" json:"request"`
	Response   string    `gorm:"column:response;type:longtext" json:"response"`
	Processed  bool      `gorm:"column:processed;default:false" json:"processed"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CallbackLog) TableName() string {
	return "callback_logs"
}
