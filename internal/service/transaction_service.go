package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyalty/internal/config"
	"loyalty/internal/model"
	"loyalty/internal/repository"
	"loyalty/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txnUserStore interface {
	GetByPhone(ctx context.Context, phone string, mallID int64) (*model.UserProfile, error)
	GetByID(ctx context.Context, id int64) (*model.UserProfile, error)
	AddPoints(ctx context.Context, tx *gorm.DB, userID int64, points int64, version int) error
}

type txnStoreStore interface {
	GetByID(ctx context.Context, id int64) (*model.Store, error)
}

type transactionStore interface {
	Create(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error
	GetByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetByReceiptID(ctx context.Context, receiptID string) (*model.Transaction, error)
}

type ledgerStore interface {
	Create(ctx context.Context, tx *gorm.DB, entry *model.PointLedger) error
}

type outboxStore interface {
	Create(ctx context.Context, tx *gorm.DB, msg *model.OutboxMessage) error
}

type ProcessTransactionInput struct {
	PhoneNumber string
	MallID      int64
	StoreID     int64
	ReceiptID   string
	Description string
	Price       decimal.Decimal
	OccurredAt  time.Time // zero value means now
}

type ProcessTransactionResult struct {
	TransactionID  int64           `json:"transaction_id"`
	UserID         int64           `json:"user_id"`
	StoreID        int64           `json:"store_id"`
	ReceiptID      string          `json:"receipt_id"`
	Price          decimal.Decimal `json:"price"`
	Points         int64           `json:"points"`
	NewTotalPoints int64           `json:"new_total_points"`
}

// TransactionService records purchase receipts and credits the earned
// points. The receipt row and the balance credit land in one unit of
// work: no credit without a recorded receipt and vice versa.
type TransactionService struct {
	tx           txRunner
	users        txnUserStore
	stores       txnStoreStore
	transactions transactionStore
	ledger       ledgerStore
	outbox       outboxStore
	cfg          *config.Config
}

func NewTransactionService(db *gorm.DB, cfg *config.Config) *TransactionService {
	return &TransactionService{
		tx:           gormTxRunner{db: db},
		users:        repository.NewUserRepository(db),
		stores:       repository.NewStoreRepository(db),
		transactions: repository.NewTransactionRepository(db),
		ledger:       repository.NewLedgerRepository(db),
		outbox:       repository.NewOutboxRepository(db),
		cfg:          cfg,
	}
}

func (s *TransactionService) ProcessTransaction(ctx context.Context, input *ProcessTransactionInput) (*ProcessTransactionResult, error) {
	if strings.TrimSpace(input.PhoneNumber) == "" {
		return nil, &ValidationError{Field: phoneField, Message: "Phone number is required"}
	}
	if strings.TrimSpace(input.ReceiptID) == "" {
		return nil, &ValidationError{Field: "receiptId", Message: "Receipt ID is required"}
	}
	if input.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "Price must not be negative"}
	}

	normalized, err := NormalizePhone(input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, normalized, input.MallID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.stores.GetByID(ctx, input.StoreID); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	// Pre-check for a friendlier failure; the unique index on
	// receipt_id is what actually closes the race.
	existing, err := s.transactions.GetByReceiptID(ctx, input.ReceiptID)
	if err != nil {
		return nil, fmt.Errorf("check receipt: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateReceipt
	}

	points := PointsForPrice(input.Price)
	if err := AddPoints(user, points); err != nil {
		return nil, err
	}

	trans := &model.Transaction{
		UserID:      user.ID,
		StoreID:     input.StoreID,
		ReceiptID:   input.ReceiptID,
		Description: input.Description,
		Price:       input.Price,
		Points:      points,
	}
	if !input.OccurredAt.IsZero() {
		trans.CreatedAt = input.OccurredAt
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.transactions.Create(ctx, tx, trans); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				// Lost the race to a concurrent request with the same
				// receipt: indistinguishable from the pre-check case.
				return ErrDuplicateReceipt
			}
			return fmt.Errorf("create transaction: %w", err)
		}

		if err := s.users.AddPoints(ctx, tx, user.ID, points, user.Version); err != nil {
			if errors.Is(err, repository.ErrStaleRecord) {
				return ErrConflict
			}
			return fmt.Errorf("credit points: %w", err)
		}

		entry := &model.PointLedger{
			LedgerNo:      idgen.GenerateLedgerNo(),
			UserID:        user.ID,
			Type:          model.LedgerTypeEarn,
			RefID:         input.ReceiptID,
			Points:        points,
			BalanceBefore: user.TotalPoints - points,
			BalanceAfter:  user.TotalPoints,
		}
		if err := s.ledger.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("write ledger entry: %w", err)
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"user_id":    user.ID,
			"store_id":   input.StoreID,
			"receipt_id": input.ReceiptID,
			"points":     points,
			"new_total":  user.TotalPoints,
		})
		msg := &model.OutboxMessage{
			MessageKey: idgen.GenerateEventKey(),
			Topic:      s.cfg.Kafka.Topic.PointsEarned,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		if err := s.outbox.Create(ctx, tx, msg); err != nil {
			return fmt.Errorf("stage event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ProcessTransactionResult{
		TransactionID:  trans.ID,
		UserID:         user.ID,
		StoreID:        input.StoreID,
		ReceiptID:      input.ReceiptID,
		Price:          input.Price,
		Points:         points,
		NewTotalPoints: user.TotalPoints,
	}, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	trans, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return trans, nil
}
