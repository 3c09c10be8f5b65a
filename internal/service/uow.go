package service

import (
	"context"

	"gorm.io/gorm"
)

// txRunner is the unit-of-work seam: everything inside fn commits or
// rolls back as one. Services receive the open transaction handle and
// pass it down to their stores.
type txRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
