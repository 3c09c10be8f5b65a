package repository

import (
	"context"
	"errors"

	"loyalty/internal/model"

	"gorm.io/gorm"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *StoreRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (r *StoreRepository) ListByMall(ctx context.Context, mallID int64) ([]*model.Store, error) {
	var stores []*model.Store
	err := r.db.WithContext(ctx).
		Where("mall_id = ?", mallID).
		Order("created_at ASC").
		Find(&stores).Error
	return stores, err
}
