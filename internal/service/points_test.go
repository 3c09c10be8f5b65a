package service

import (
	"testing"

	"loyalty/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPoints(t *testing.T) {
	user := &model.UserProfile{TotalPoints: 10}

	require.NoError(t, AddPoints(user, 5))
	assert.Equal(t, int64(15), user.TotalPoints)
}

func TestAddPoints_NegativeRejected(t *testing.T) {
	user := &model.UserProfile{TotalPoints: 10}

	err := AddPoints(user, -1)
	assert.Error(t, err)
	assert.Equal(t, int64(10), user.TotalPoints)
}

func TestDeductPoints_Enough(t *testing.T) {
	user := &model.UserProfile{TotalPoints: 20}

	require.NoError(t, DeductPoints(user, 7))
	assert.Equal(t, int64(13), user.TotalPoints)
}

func TestDeductPoints_NotEnough(t *testing.T) {
	user := &model.UserProfile{TotalPoints: 3}

	err := DeductPoints(user, 10)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, int64(3), user.TotalPoints, "balance must be unchanged on failure")
}

func TestAddThenDeduct_RoundTrips(t *testing.T) {
	user := &model.UserProfile{TotalPoints: 42}

	require.NoError(t, AddPoints(user, 100))
	require.NoError(t, DeductPoints(user, 100))
	assert.Equal(t, int64(42), user.TotalPoints)
}

func TestPointsForPrice(t *testing.T) {
	tests := []struct {
		price    string
		expected int64
	}{
		{"2.50", 250},
		{"1", 100},
		{"0", 0},
		{"0.01", 1},
		{"19.99", 1999},
		{"0.009", 0}, // truncated toward zero
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			price, err := decimal.NewFromString(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, PointsForPrice(price))
		})
	}
}
