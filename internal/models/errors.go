package models

import "errors"

// Domain errors shared between services and handlers. Handlers map them to
// HTTP statuses; absent and not-owned entities are deliberately both
// ErrNotFound so ownership cannot be probed.
var (
	ErrNotFound        = errors.New("not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid email or password")
	ErrLimitExceeded   = errors.New("plan limit exceeded")
	ErrForbiddenFormat = errors.New("export format not allowed on current plan")
	ErrReceiptDenied   = errors.New("receipt attachment not allowed on current plan")
	ErrInvalidCoupon   = errors.New("coupon is not valid")
	ErrNoData          = errors.New("no data for requested period")
	ErrDuplicate       = errors.New("duplicate entry")
)
