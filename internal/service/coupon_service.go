package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyalty/internal/config"
	"loyalty/internal/infrastructure/lock"
	"loyalty/internal/model"
	"loyalty/internal/repository"
	"loyalty/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type couponUserStore interface {
	GetByID(ctx context.Context, id int64) (*model.UserProfile, error)
	DeductPoints(ctx context.Context, tx *gorm.DB, userID int64, points int64, version int) error
}

type couponStore interface {
	GetByID(ctx context.Context, id int64) (*model.Coupon, error)
	List(ctx context.Context, mallID int64, isActive *bool) ([]*model.Coupon, error)
}

type userCouponStore interface {
	Create(ctx context.Context, tx *gorm.DB, uc *model.UserCoupon) error
	GetBySerial(ctx context.Context, serial string) (*model.UserCoupon, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.UserCoupon, error)
	MarkRedeemed(ctx context.Context, tx *gorm.DB, serial string) error
}

type redeemLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// CouponService owns both halves of the redemption protocol. Redeeming
// by coupon id grants: points are deducted and a serial-coded
// UserCoupon is created in one unit of work. Redeeming by serial
// consumes: the grant's redeemed flag flips false to true exactly once.
type CouponService struct {
	tx          txRunner
	users       couponUserStore
	coupons     couponStore
	userCoupons userCouponStore
	ledger      ledgerStore
	outbox      outboxStore
	locks       redeemLocker
	cfg         *config.Config
	now         func() time.Time
}

func NewCouponService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CouponService {
	s := &CouponService{
		tx:          gormTxRunner{db: db},
		users:       repository.NewUserRepository(db),
		coupons:     repository.NewCouponRepository(db),
		userCoupons: repository.NewUserCouponRepository(db),
		ledger:      repository.NewLedgerRepository(db),
		outbox:      repository.NewOutboxRepository(db),
		cfg:         cfg,
		now:         time.Now,
	}
	if redisClient != nil {
		s.locks = lock.NewManager(redisClient)
	}
	return s
}

// RedeemCoupon grants couponID to userID: checks the validity window,
// deducts the cost and creates the UserCoupon with a fresh unique
// serial. The grant is not yet consumed; that happens at presentation
// time through RedeemCouponBySerial.
func (s *CouponService) RedeemCoupon(ctx context.Context, userID, couponID int64) (*model.UserCoupon, error) {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	if !coupon.RedeemableAt(s.now()) {
		return nil, ErrCouponNotActive
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, lock.UserKey(userID))
		if err != nil {
			return nil, ErrConflict
		}
		defer release()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := DeductPoints(user, coupon.CostPoint); err != nil {
		return nil, err
	}

	attempts := s.cfg.Business.SerialMaxAttempts
	if attempts <= 0 {
		attempts = defaultSerialAttempts
	}

	// Generate, attempt the unique insert, regenerate on collision.
	// Collisions roll the whole unit of work back, so the deduction
	// never lands without its grant.
	for i := 0; i < attempts; i++ {
		serial, err := newSerialNumber()
		if err != nil {
			return nil, err
		}

		uc := &model.UserCoupon{
			SerialNumber: serial,
			UserID:       userID,
			CouponID:     couponID,
			IsRedeemed:   false,
		}

		err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			if err := s.users.DeductPoints(ctx, tx, userID, coupon.CostPoint, user.Version); err != nil {
				if errors.Is(err, repository.ErrStaleRecord) {
					return s.classifyDeductFailure(ctx, userID, coupon.CostPoint)
				}
				return fmt.Errorf("deduct points: %w", err)
			}

			if err := s.userCoupons.Create(ctx, tx, uc); err != nil {
				return err
			}

			entry := &model.PointLedger{
				LedgerNo:      idgen.GenerateLedgerNo(),
				UserID:        userID,
				Type:          model.LedgerTypeRedeem,
				RefID:         serial,
				Points:        -coupon.CostPoint,
				BalanceBefore: user.TotalPoints + coupon.CostPoint,
				BalanceAfter:  user.TotalPoints,
			}
			if err := s.ledger.Create(ctx, tx, entry); err != nil {
				return fmt.Errorf("write ledger entry: %w", err)
			}

			payload, _ := json.Marshal(map[string]interface{}{
				"user_id":       userID,
				"coupon_id":     couponID,
				"serial_number": serial,
				"cost_point":    coupon.CostPoint,
			})
			msg := &model.OutboxMessage{
				MessageKey: serial,
				Topic:      s.cfg.Kafka.Topic.CouponGranted,
				Payload:    string(payload),
				Status:     model.OutboxStatusPending,
			}
			if err := s.outbox.Create(ctx, tx, msg); err != nil {
				return fmt.Errorf("stage event: %w", err)
			}

			return nil
		})
		if errors.Is(err, repository.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return uc, nil
	}

	return nil, ErrSerialExhausted
}

// classifyDeductFailure turns a lost guarded update into the failure
// the caller can act on: either the balance really is short, or a
// concurrent writer moved it and the request can be retried.
func (s *CouponService) classifyDeductFailure(ctx context.Context, userID, cost int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TotalPoints < cost {
		return ErrInsufficientPoints
	}
	return ErrConflict
}

// RedeemCouponBySerial consumes a previously granted coupon. The
// compare-and-set in MarkRedeemed guarantees a single winner when the
// same serial is presented concurrently.
func (s *CouponService) RedeemCouponBySerial(ctx context.Context, serial string) (*model.UserCoupon, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, &ValidationError{Field: "serialNumber", Message: "Serial number is required"}
	}

	uc, err := s.userCoupons.GetBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, repository.ErrUserCouponNotFound) {
			return nil, ErrSerialNotFound
		}
		return nil, err
	}
	if uc.IsRedeemed {
		return nil, ErrAlreadyRedeemed
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, lock.SerialKey(serial))
		if err != nil {
			return nil, ErrConflict
		}
		defer release()
	}

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.userCoupons.MarkRedeemed(ctx, tx, serial); err != nil {
			if errors.Is(err, repository.ErrStaleRecord) {
				// The other presenter won the flip.
				return ErrAlreadyRedeemed
			}
			return fmt.Errorf("mark redeemed: %w", err)
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"user_id":       uc.UserID,
			"coupon_id":     uc.CouponID,
			"serial_number": serial,
		})
		msg := &model.OutboxMessage{
			MessageKey: serial,
			Topic:      s.cfg.Kafka.Topic.CouponConsumed,
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

	uc.IsRedeemed = true
	return uc, nil
}

func (s *CouponService) GetCoupon(ctx context.Context, id int64) (*model.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *CouponService) ListCoupons(ctx context.Context, mallID int64, isActive *bool) ([]*model.Coupon, error) {
	return s.coupons.List(ctx, mallID, isActive)
}

func (s *CouponService) ListUserCoupons(ctx context.Context, userID int64) ([]*model.UserCoupon, error) {
	return s.userCoupons.ListByUser(ctx, userID)
}
