package models

import (
	"time"
)

// Pricing units. Rate-based ranges charge Price per started block of 1000
// points; level-based ranges charge Price per level.
const (
	UnitPer1000 = "per_1000"
	UnitLevel   = "level"
)

// PricingConfig is one admin-configured price range for a (game, mode) pair.
// Enabled ranges for the same pair must not overlap.
type PricingConfig struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Game       string    `gorm:"column:game;size:50;not null;index:idx_pricing_game_mode" json:"game"`
	GameMode   string    `gorm:"column:game_mode;size:50;not null;index:idx_pricing_game_mode" json:"game_mode"`
	RangeStart int       `gorm:"column:range_start;not null" json:"range_start"`
	RangeEnd   int       `gorm:"column:range_end;not null" json:"range_end"`
	Price      float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Unit       string    `gorm:"column:unit;size:20;not null;default:per_1000" json:"unit"`
	Enabled    bool      `gorm:"column:enabled;default:true" json:"enabled"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PricingConfig) TableName() string {
	return "pricing_configs"
}

// Contains reports whether the point falls inside the half-open range.
func (p *PricingConfig) Contains(point int) bool {
	return p.RangeStart <= point && point < p.RangeEnd
}
