package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collision.
	ErrAlreadyExists = errors.New("already exists")
	// ErrCheckoutInProgress is returned while an order submission is outstanding.
	ErrCheckoutInProgress = errors.New("checkout in progress")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports a missing or malformed checkout field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type VoucherReason int

const (
	VoucherNotFound VoucherReason = iota + 1
	VoucherInactive
	VoucherOutOfWindow
	VoucherUsageExhausted
	VoucherBelowMinimum
)

func (r VoucherReason) String() string {
	switch r {
	case VoucherNotFound:
		return "not_found"
	case VoucherInactive:
		return "inactive"
	case VoucherOutOfWindow:
		return "out_of_window"
	case VoucherUsageExhausted:
		return "usage_exhausted"
	case VoucherBelowMinimum:
		return "below_minimum"
	default:
		return "unknown"
	}
}

// VoucherError is user-facing and never changes cart state.
type VoucherError struct {
	Code        string
	Reason      VoucherReason
	MinPurchase int64
}

func (e *VoucherError) Error() string {
	switch e.Reason {
	case VoucherNotFound:
		return fmt.Sprintf("voucher %q not found", e.Code)
	case VoucherInactive:
		return fmt.Sprintf("voucher %q is inactive", e.Code)
	case VoucherOutOfWindow:
		return fmt.Sprintf("voucher %q is not valid today", e.Code)
	case VoucherUsageExhausted:
		return fmt.Sprintf("voucher %q has reached its usage limit", e.Code)
	case VoucherBelowMinimum:
		return fmt.Sprintf("voucher %q requires a minimum purchase of %d", e.Code, e.MinPurchase)
	default:
		return fmt.Sprintf("voucher %q rejected", e.Code)
	}
}

// SyncError wraps a failed push of a cart or wishlist item to the backend.
type SyncError struct {
	Collection string
	ProductID  int64
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s item %d: %v", e.Collection, e.ProductID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// CheckoutSubmissionError wraps a failed order creation.
type CheckoutSubmissionError struct {
	Reference string
	Err       error
}

func (e *CheckoutSubmissionError) Error() string {
	return fmt.Sprintf("submit order %s: %v", e.Reference, e.Err)
}

func (e *CheckoutSubmissionError) Unwrap() error { return e.Err }
