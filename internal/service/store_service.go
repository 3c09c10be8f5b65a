package service

import (
	"context"
	"errors"
	"strings"

	"loyalty/internal/model"
	"loyalty/internal/repository"

	"gorm.io/gorm"
)

type storeStore interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	ListByMall(ctx context.Context, mallID int64) ([]*model.Store, error)
}

type StoreService struct {
	stores storeStore
}

func NewStoreService(db *gorm.DB) *StoreService {
	return &StoreService{stores: repository.NewStoreRepository(db)}
}

func (s *StoreService) CreateStore(ctx context.Context, name string, mallID int64) (*model.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "Store name is required"}
	}

	store := &model.Store{Name: name, MallID: mallID}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StoreService) GetStore(ctx context.Context, id int64) (*model.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *StoreService) ListStores(ctx context.Context, mallID int64) ([]*model.Store, error) {
	return s.stores.ListByMall(ctx, mallID)
}
