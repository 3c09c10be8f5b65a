package service

import (
	"loyalty/internal/model"

	"github.com/shopspring/decimal"
)

// AddPoints and DeductPoints are the only balance mutation rules in the
// system. They touch the in-memory record only; persisting the new
// balance in the same unit of work as the correlated write (transaction
// row, coupon grant) is the caller's job.

func AddPoints(user *model.UserProfile, amount int64) error {
	if amount < 0 {
		return &ValidationError{Field: "points", Message: "Points amount must not be negative"}
	}
	user.TotalPoints += amount
	return nil
}

func DeductPoints(user *model.UserProfile, amount int64) error {
	if amount < 0 {
		return &ValidationError{Field: "points", Message: "Points amount must not be negative"}
	}
	if amount > user.TotalPoints {
		return ErrInsufficientPoints
	}
	user.TotalPoints -= amount
	return nil
}

var pointsRate = decimal.NewFromInt(100)

// PointsForPrice derives the points a receipt earns: price times 100,
// truncated toward zero. Applied exactly once per transaction.
func PointsForPrice(price decimal.Decimal) int64 {
	return price.Mul(pointsRate).IntPart()
}
