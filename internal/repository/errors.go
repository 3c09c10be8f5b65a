package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrStoreNotFound       = errors.New("store not found")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrUserCouponNotFound  = errors.New("user coupon not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateKey reports a unique-constraint violation at commit
	// time. Pre-checks close most races, but two concurrent inserts can
	// both pass them; the constraint is the real guarantee and services
	// translate this into the same domain failure the pre-check yields.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStaleRecord reports that a guarded update matched no row
	// because the version or guard predicate no longer holds.
	ErrStaleRecord = errors.New("stale record")
)

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}
