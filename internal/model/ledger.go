package model

import (
	"time"
)

const (
	LedgerTypeEarn   = "EARN"   // points credited from a receipt
	LedgerTypeRedeem = "REDEEM" // points spent on a coupon grant
)

// PointLedger is the append-only audit trail of balance mutations.
// One row per mutation, written in the same unit of work as the
// balance update so the two can never diverge. It is a secondary
// structure: TotalPoints on the user stays the source of truth.
type PointLedger struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LedgerNo      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"ledger_no"`
	UserID        int64     `gorm:"index;not null" json:"user_id"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	RefID         string    `gorm:"type:varchar(64);index;not null" json:"ref_id"` // receipt id or serial number
	Points        int64     `gorm:"not null" json:"points"`                        // positive credit, negative debit
	BalanceBefore int64     `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64     `gorm:"not null" json:"balance_after"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PointLedger) TableName() string {
	return "point_ledger"
}
