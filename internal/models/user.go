package models

import (
	"time"
)

const (
	RoleClient  = "CLIENT"
	RoleBooster = "BOOSTER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"column:name;size:100;not null" json:"name"`
	Email    string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Role     string `gorm:"column:role;size:20;not null;default:CLIENT" json:"role"`
	ApiToken string `gorm:"column:api_token;size:64;uniqueIndex" json:"-"`
	Active   bool   `gorm:"column:active;default:true" json:"active"`

	// CommissionOverride is a booster's personal cut. Nil means the platform
	// default from commission_configs applies.
	CommissionOverride *float64 `gorm:"column:commission_override;type:decimal(8,6)" json:"commission_override,omitempty"`

	// ProfitShare is an admin's relative weight in the admin pool.
	ProfitShare float64 `gorm:"column:profit_share;type:decimal(8,2);default:1.00" json:"profit_share"`

	PixKey     string    `gorm:"column:pix_key;size:140" json:"pix_key,omitempty"`
	PixKeyType string    `gorm:"column:pix_key_type;size:20" json:"pix_key_type,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// CanAccept reports whether the user may claim the order for boosting.
func (u *User) CanAccept(o *Order) bool {
	return u.Role == RoleBooster && u.Active && o.BoosterID == nil &&
		(o.Status == OrderPending || o.Status == OrderPaid)
}

// CanCancel reports whether the user may cancel the order outside of a dispute.
func (u *User) CanCancel(o *Order) bool {
	if o.Status != OrderPending && o.Status != OrderPaid {
		return false
	}
	return u.Role == RoleAdmin || (u.Role == RoleClient && o.UserID == u.ID)
}

// CanComplete reports whether the user may mark the order finished.
func (u *User) CanComplete(o *Order) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.Role == RoleBooster && o.BoosterID != nil && *o.BoosterID == u.ID
}

// CanDispute reports whether the user is a party to the order.
func (u *User) CanDispute(o *Order) bool {
	if o.UserID == u.ID {
		return true
	}
	return o.BoosterID != nil && *o.BoosterID == u.ID
}

func (u *User) CanResolveDispute() bool {
	return u.Role == RoleAdmin
}
