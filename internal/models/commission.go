package models

import (
	"time"
)

const (
	RevenuePending = "PENDING"
	RevenuePaid    = "PAID"
)

// BoosterCommission is the booster's cut of one order. Created exactly once,
// at acceptance, inside the acceptance transaction.
type BoosterCommission struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint      `gorm:"column:order_id;not null;uniqueIndex:idx_booster_commission_order" json:"order_id"`
	BoosterID  uint      `gorm:"column:booster_id;not null;index" json:"booster_id"`
	OrderTotal float64   `gorm:"column:order_total;type:decimal(20,2);not null" json:"order_total"`
	Percentage float64   `gorm:"column:percentage;type:decimal(8,6);not null" json:"percentage"`
	Amount     float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status     string    `gorm:"column:status;size:20;not null;default:PENDING" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BoosterCommission) TableName() string {
	return "booster_commissions"
}

// AdminRevenue is one admin's slice of the non-booster pool for one order.
// Percentage is the fraction of the order total, not of the pool, so the
// column unit matches BoosterCommission.Percentage.
type AdminRevenue struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint      `gorm:"column:order_id;not null;index:idx_admin_revenue_order" json:"order_id"`
	AdminID    uint      `gorm:"column:admin_id;not null;index" json:"admin_id"`
	OrderTotal float64   `gorm:"column:order_total;type:decimal(20,2);not null" json:"order_total"`
	Percentage float64   `gorm:"column:percentage;type:decimal(8,6);not null" json:"percentage"`
	Amount     float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status     string    `gorm:"column:status;size:20;not null;default:PENDING" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AdminRevenue) TableName() string {
	return "admin_revenues"
}

// BoosterCommissionHistory is append-only. Rows are never updated or deleted.
type BoosterCommissionHistory struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BoosterID     uint      `gorm:"column:booster_id;not null;index" json:"booster_id"`
	OldPercentage float64   `gorm:"column:old_percentage;type:decimal(8,6);not null" json:"old_percentage"`
	NewPercentage float64   `gorm:"column:new_percentage;type:decimal(8,6);not null" json:"new_percentage"`
	ChangedBy     uint      `gorm:"column:changed_by;not null" json:"changed_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BoosterCommissionHistory) TableName() string {
	return "booster_commission_history"
}

// CommissionConfig is the single-row platform split configuration.
// BoosterPercentage + AdminPercentage must sum to 1.
type CommissionConfig struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BoosterPercentage float64   `gorm:"column:booster_percentage;type:decimal(8,6);not null;default:0.70" json:"booster_percentage"`
	AdminPercentage   float64   `gorm:"column:admin_percentage;type:decimal(8,6);not null;default:0.30" json:"admin_percentage"`
	UpdatedBy         uint      `gorm:"column:updated_by" json:"updated_by"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CommissionConfig) TableName() string {
	return "commission_configs"
}
