package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction records one purchase receipt that earned points.
// ReceiptID comes from the POS and is unique across the whole system.
// Rows are append-only: there is no update or delete path.
type Transaction struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	StoreID     int64           `gorm:"index;not null" json:"store_id"`
	ReceiptID   string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"receipt_id"`
	Description string          `gorm:"type:varchar(256)" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Points      int64           `gorm:"not null" json:"points"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	User        *UserProfile    `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Store       *Store          `gorm:"foreignKey:StoreID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Transaction) TableName() string {
	return "transaction"
}
