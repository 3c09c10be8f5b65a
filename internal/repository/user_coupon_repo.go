package repository

import (
	"context"
	"errors"

	"loyalty/internal/model"

	"gorm.io/gorm"
)

type UserCouponRepository struct {
	db *gorm.DB
}

func NewUserCouponRepository(db *gorm.DB) *UserCouponRepository {
	return &UserCouponRepository{db: db}
}

// Create inserts a redemption grant. The serial number carries a unique
// index, so a generated serial that collides with a live one comes back
// as ErrDuplicateKey and the caller regenerates.
func (r *UserCouponRepository) Create(ctx context.Context, tx *gorm.DB, uc *model.UserCoupon) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Create(uc).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *UserCouponRepository) GetBySerial(ctx context.Context, serial string) (*model.UserCoupon, error) {
	var uc model.UserCoupon
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&uc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserCouponNotFound
		}
		return nil, err
	}
	return &uc, nil
}

func (r *UserCouponRepository) ListByUser(ctx context.Context, userID int64) ([]*model.UserCoupon, error) {
	var coupons []*model.UserCoupon
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&coupons).Error
	return coupons, err
}

// MarkRedeemed flips IsRedeemed false -> true. The is_redeemed = false
// predicate makes the flip a compare-and-set: of two concurrent callers
// presenting the same serial, exactly one update matches a row and the
// other gets ErrStaleRecord.
func (r *UserCouponRepository) MarkRedeemed(ctx context.Context, tx *gorm.DB, serial string) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.UserCoupon{}).
		Where("serial_number = ? AND is_redeemed = ?", serial, false).
		Update("is_redeemed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}
