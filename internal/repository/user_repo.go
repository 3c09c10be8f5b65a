package repository

import (
	"context"
	"errors"

	"loyalty/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new profile. A concurrent registration for the same
// (phone, mall) pair loses against the composite unique index and
// surfaces as ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, tx *gorm.DB, user *model.UserProfile) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.UserProfile, error) {
	var user model.UserProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string, mallID int64) (*model.UserProfile, error) {
	var user model.UserProfile
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND mall_id = ?", phone, mallID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddPoints credits the balance with an optimistic version check.
func (r *UserRepository) AddPoints(ctx context.Context, tx *gorm.DB, userID int64, points int64, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("id = ? AND version = ?", userID, version).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points + ?", points),
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}

// DeductPoints debits the balance. The guard predicate re-checks
// sufficiency and the version inside the update so a concurrent
// mutation cannot drive the balance negative.
func (r *UserRepository) DeductPoints(ctx context.Context, tx *gorm.DB, userID int64, points int64, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("id = ? AND total_points >= ? AND version = ?", userID, points, version).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points - ?", points),
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRecord
	}
	return nil
}
