package service

import (
	"context"

	"loyalty/internal/model"
	"loyalty/internal/repository"

	"gorm.io/gorm"
)

// In-memory stand-ins for the persistence collaborator. They copy
// records on read the way a real database round trip would, and they
// honor the same guarded-update contracts (version checks, duplicate
// keys) as the gorm repositories.

type fakeTxRunner struct {
	// snapshot, when set, captures store state before the function runs
	// and returns a restore that rolls it back on error.
	snapshot func() (restore func())
}

func (f fakeTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var restore func()
	if f.snapshot != nil {
		restore = f.snapshot()
	}
	if err := fn(nil); err != nil {
		if restore != nil {
			restore()
		}
		return err
	}
	return nil
}

type fakeUserStore struct {
	users  map[int64]*model.UserProfile
	nextID int64

	// missFirstLookup makes the first GetByPhone miss even when the
	// row exists, simulating a concurrent registration landing between
	// the lookup and the insert.
	missFirstLookup bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.UserProfile), nextID: 1}
}

func (f *fakeUserStore) add(u *model.UserProfile) *model.UserProfile {
	if u.ID == 0 {
		u.ID = f.nextID
		f.nextID++
	}
	cp := *u
	f.users[u.ID] = &cp
	return u
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.UserProfile, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByPhone(ctx context.Context, phone string, mallID int64) (*model.UserProfile, error) {
	if f.missFirstLookup {
		f.missFirstLookup = false
		return nil, repository.ErrUserNotFound
	}
	for _, u := range f.users {
		if u.PhoneNumber == phone && u.MallID == mallID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, tx *gorm.DB, user *model.UserProfile) error {
	for _, u := range f.users {
		if u.PhoneNumber == user.PhoneNumber && u.MallID == user.MallID {
			return repository.ErrDuplicateKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) AddPoints(ctx context.Context, tx *gorm.DB, userID int64, points int64, version int) error {
	u, ok := f.users[userID]
	if !ok || u.Version != version {
		return repository.ErrStaleRecord
	}
	u.TotalPoints += points
	u.Version++
	return nil
}

func (f *fakeUserStore) DeductPoints(ctx context.Context, tx *gorm.DB, userID int64, points int64, version int) error {
	u, ok := f.users[userID]
	if !ok || u.Version != version || u.TotalPoints < points {
		return repository.ErrStaleRecord
	}
	u.TotalPoints -= points
	u.Version++
	return nil
}

type fakeStoreStore struct {
	stores map[int64]*model.Store
	nextID int64
}

func newFakeStoreStore() *fakeStoreStore {
	return &fakeStoreStore{stores: make(map[int64]*model.Store), nextID: 1}
}

func (f *fakeStoreStore) Create(ctx context.Context, store *model.Store) error {
	store.ID = f.nextID
	f.nextID++
	cp := *store
	f.stores[store.ID] = &cp
	return nil
}

func (f *fakeStoreStore) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, repository.ErrStoreNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStoreStore) ListByMall(ctx context.Context, mallID int64) ([]*model.Store, error) {
	var out []*model.Store
	for _, s := range f.stores {
		if s.MallID == mallID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeTransactionStore struct {
	byReceipt map[string]*model.Transaction
	nextID    int64
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{byReceipt: make(map[string]*model.Transaction), nextID: 1}
}

func (f *fakeTransactionStore) Create(ctx context.Context, tx *gorm.DB, trans *model.Transaction) error {
	if _, exists := f.byReceipt[trans.ReceiptID]; exists {
		return repository.ErrDuplicateKey
	}
	trans.ID = f.nextID
	f.nextID++
	cp := *trans
	f.byReceipt[trans.ReceiptID] = &cp
	return nil
}

func (f *fakeTransactionStore) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	for _, t := range f.byReceipt {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func (f *fakeTransactionStore) GetByReceiptID(ctx context.Context, receiptID string) (*model.Transaction, error) {
	t, ok := f.byReceipt[receiptID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

type fakeCouponStore struct {
	coupons map[int64]*model.Coupon
}

func newFakeCouponStore() *fakeCouponStore {
	return &fakeCouponStore{coupons: make(map[int64]*model.Coupon)}
}

func (f *fakeCouponStore) add(c *model.Coupon) {
	cp := *c
	f.coupons[c.ID] = &cp
}

func (f *fakeCouponStore) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCouponStore) List(ctx context.Context, mallID int64, isActive *bool) ([]*model.Coupon, error) {
	var out []*model.Coupon
	for _, c := range f.coupons {
		if mallID != 0 && c.MallID != mallID {
			continue
		}
		if isActive != nil && c.IsActive != *isActive {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type fakeUserCouponStore struct {
	bySerial map[string]*model.UserCoupon
	nextID   int64

	// collisions forces the first N creates to report a duplicate
	// serial, exercising the regenerate-on-conflict loop.
	collisions int
}

func newFakeUserCouponStore() *fakeUserCouponStore {
	return &fakeUserCouponStore{bySerial: make(map[string]*model.UserCoupon), nextID: 1}
}

func (f *fakeUserCouponStore) Create(ctx context.Context, tx *gorm.DB, uc *model.UserCoupon) error {
	if f.collisions > 0 {
		f.collisions--
		return repository.ErrDuplicateKey
	}
	if _, exists := f.bySerial[uc.SerialNumber]; exists {
		return repository.ErrDuplicateKey
	}
	uc.ID = f.nextID
	f.nextID++
	cp := *uc
	f.bySerial[uc.SerialNumber] = &cp
	return nil
}

func (f *fakeUserCouponStore) GetBySerial(ctx context.Context, serial string) (*model.UserCoupon, error) {
	uc, ok := f.bySerial[serial]
	if !ok {
		return nil, repository.ErrUserCouponNotFound
	}
	cp := *uc
	return &cp, nil
}

func (f *fakeUserCouponStore) ListByUser(ctx context.Context, userID int64) ([]*model.UserCoupon, error) {
	var out []*model.UserCoupon
	for _, uc := range f.bySerial {
		if uc.UserID == userID {
			cp := *uc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserCouponStore) MarkRedeemed(ctx context.Context, tx *gorm.DB, serial string) error {
	uc, ok := f.bySerial[serial]
	if !ok || uc.IsRedeemed {
		return repository.ErrStaleRecord
	}
	uc.IsRedeemed = true
	return nil
}

type fakeLedgerStore struct {
	entries []*model.PointLedger
}

func (f *fakeLedgerStore) Create(ctx context.Context, tx *gorm.DB, entry *model.PointLedger) error {
	cp := *entry
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeLedgerStore) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.PointLedger, int64, error) {
	var out []*model.PointLedger
	for _, e := range f.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

type fakeOutboxStore struct {
	messages []*model.OutboxMessage
}

func (f *fakeOutboxStore) Create(ctx context.Context, tx *gorm.DB, msg *model.OutboxMessage) error {
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}
