package repository

import (
	"context"
	"errors"

	"loyalty/internal/model"

	"gorm.io/gorm"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// List returns coupons, newest first. isActive filters on the active
// flag when non-nil; mallID scopes to one mall when non-zero.
func (r *CouponRepository) List(ctx context.Context, mallID int64, isActive *bool) ([]*model.Coupon, error) {
	query := r.db.WithContext(ctx).Model(&model.Coupon{})
	if mallID != 0 {
		query = query.Where("mall_id = ?", mallID)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	var coupons []*model.Coupon
	err := query.Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}
