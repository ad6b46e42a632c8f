package models

import (
	"time"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index:idx_notifications_user" json:"user_id"`
	Title     string    `gorm:"column:title;size:255;not null" json:"title"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
	Read      bool      `gorm:"column:read;default:false" json:"read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
