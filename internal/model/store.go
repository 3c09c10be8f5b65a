package model

import (
	"time"
)

// Store is a merchant inside a mall. Referenced by transactions,
// never deleted while any transaction points at it.
type Store struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	MallID    int64     `gorm:"index;not null" json:"mall_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Store) TableName() string {
	return "store"
}
