package model

import (
	"time"
)

const RoleUser = "user"

// UserProfile is the loyalty account of one shopper inside one mall.
// The same phone number may enroll in several malls, hence the composite
// unique index. TotalPoints is the live balance; Version backs the
// optimistic-lock guard on every balance update.
type UserProfile struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PhoneNumber  string    `gorm:"type:varchar(20);uniqueIndex:uk_phone_mall;not null" json:"phone_number"`
	Name         string    `gorm:"type:varchar(128)" json:"name"`
	Role         string    `gorm:"type:varchar(20);not null;default:user" json:"role"`
	TotalPoints  int64     `gorm:"not null;default:0" json:"total_points"`
	MallID       int64     `gorm:"uniqueIndex:uk_phone_mall;not null" json:"mall_id"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	Version      int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}
