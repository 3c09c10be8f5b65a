package model

import (
	"time"
)

// Coupon is a catalog entry users can spend points on. Immutable after
// creation except for IsActive, which managers toggle out of band.
type Coupon struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ManagerID   int64     `gorm:"index;not null" json:"manager_id"`
	Type        string    `gorm:"type:varchar(32);not null" json:"type"`
	StartAt     time.Time `gorm:"not null" json:"start_at"`
	EndAt       time.Time `gorm:"not null" json:"end_at"`
	Description string    `gorm:"type:varchar(256)" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CostPoint   int64     `gorm:"not null" json:"cost_point"`
	MallID      int64     `gorm:"index;not null" json:"mall_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Coupon) TableName() string {
	return "coupon"
}

// RedeemableAt reports whether the coupon can be granted at t:
// the active flag is set and t falls inside [StartAt, EndAt].
func (c *Coupon) RedeemableAt(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	return !t.Before(c.StartAt) && !t.After(c.EndAt)
}

// UserCoupon is one redemption grant. The serial number is the identity
// presented at the counter; IsRedeemed flips false -> true exactly once.
// Rows cascade away with either the user or the coupon.
type UserCoupon struct {
	ID           int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	SerialNumber string      `gorm:"type:char(8);uniqueIndex;not null" json:"serial_number"`
	UserID       int64       `gorm:"index;not null" json:"user_id"`
	CouponID     int64       `gorm:"index;not null" json:"coupon_id"`
	IsRedeemed   bool        `gorm:"not null;default:false" json:"is_redeemed"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	User         *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Coupon       *Coupon      `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserCoupon) TableName() string {
	return "user_coupon"
}
