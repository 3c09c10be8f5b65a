package service

import (
	"context"
	"errors"

	"loyalty/internal/model"
	"loyalty/internal/repository"

	"gorm.io/gorm"
)

type userLookupStore interface {
	GetByID(ctx context.Context, id int64) (*model.UserProfile, error)
}

type userLedgerStore interface {
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.PointLedger, int64, error)
}

type UserService struct {
	users  userLookupStore
	ledger userLedgerStore
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		users:  repository.NewUserRepository(db),
		ledger: repository.NewLedgerRepository(db),
	}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetPoints returns the live balance for display.
func (s *UserService) GetPoints(ctx context.Context, id int64) (int64, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.TotalPoints, nil
}

// GetLedger pages through the audit trail of balance mutations.
func (s *UserService) GetLedger(ctx context.Context, userID int64, page, pageSize int) ([]*model.PointLedger, int64, error) {
	return s.ledger.ListByUser(ctx, userID, page, pageSize)
}
