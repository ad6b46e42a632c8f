package services

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyAssigned   = errors.New("order already assigned to a booster")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrForbidden         = errors.New("operation not allowed for this user")
	ErrRefundFailed      = errors.New("refund could not be processed")
	ErrDuplicateDispute  = errors.New("order already has a dispute")
	ErrDisputeResolved   = errors.New("dispute is already resolved")
	ErrOverlappingRange  = errors.New("pricing range overlaps an enabled range")
	ErrPaymentPending    = errors.New("order already has a pending payment")
	ErrInsufficientFunds = errors.New("insufficient withdrawable balance")
	ErrWithdrawalOpen    = errors.New("a withdrawal is already in progress")
)

// ValidationError carries a user-correctable input problem to the boundary.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigurationError signals malformed pricing coverage. Operator-facing: the
// engine must never fall back to a silent default price.
type ConfigurationError struct {
	Game  string
	Mode  string
	Point int
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pricing configuration error for %s/%s at %d: %s", e.Game, e.Mode, e.Point, e.Msg)
}
