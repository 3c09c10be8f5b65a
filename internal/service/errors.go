package service

import (
	"errors"
	"fmt"
)

// Business failure vocabulary. These are stable identifiers the handler
// layer branches on to pick transport status codes; message text matches
// what clients already display.
var (
	ErrUserNotFound        = errors.New("User not found")
	ErrStoreNotFound       = errors.New("Store not found")
	ErrCouponNotFound      = errors.New("Coupon not found")
	ErrCouponNotActive     = errors.New("Coupon is not active")
	ErrTransactionNotFound = errors.New("Transaction not found")
	ErrInsufficientPoints  = errors.New("Not enough points")
	ErrDuplicateReceipt    = errors.New("Receipt ID already exists")
	ErrAlreadyRedeemed     = errors.New("Coupon already redeemed")
	ErrInvalidCredentials  = errors.New("Invalid phone number or password")
	ErrSerialNotFound      = errors.New("Invalid serial number")

	// ErrConflict reports that a guarded update lost against a
	// concurrent writer. Retrying is a caller policy.
	ErrConflict = errors.New("concurrent update, please retry")

	// ErrSerialExhausted: every generated serial collided with a live
	// one. With an 8-character code space this means something is wrong
	// beyond bad luck.
	ErrSerialExhausted = errors.New("could not generate a unique serial number")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PhoneFormatCode is the stable machine code carried by phone
// validation failures.
const PhoneFormatCode = "INVALID_PHONE_NUMBER"

// InvalidPhoneError reports a phone number that does not match any
// accepted mobile-number shape.
type InvalidPhoneError struct {
	Field string
}

func (e *InvalidPhoneError) Error() string {
	return fmt.Sprintf("invalid phone number in field %s", e.Field)
}
