// Package voucher validates voucher codes against a subtotal and turns them
// into the discount the pricing engine applies.
package voucher

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Application is a validated voucher ready for pricing. Amount is already
// bounded to [0, subtotal] for the subtotal it was validated against.
type Application struct {
	Code         string             `json:"code"`
	Kind         domain.VoucherKind `json:"kind"`
	Amount       int64              `json:"amount"`
	FreeShipping bool               `json:"freeShipping"`
}

// Catalog looks vouchers up by code. Implementations return
// domain.ErrNotFound for unknown codes.
type Catalog interface {
	FindByCode(ctx context.Context, code string) (*domain.Voucher, error)
}

type Validator struct {
	catalog Catalog
	now     func() time.Time
}

func NewValidator(catalog Catalog, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{catalog: catalog, now: now}
}

// Apply looks the code up and validates it for today.
func (val *Validator) Apply(ctx context.Context, code string, subtotal int64) (Application, error) {
	normalized := domain.NormalizeVoucherCode(code)
	if normalized == "" {
		return Application{}, &domain.VoucherError{Code: code, Reason: domain.VoucherNotFound}
	}
	v, err := val.catalog.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Application{}, &domain.VoucherError{Code: normalized, Reason: domain.VoucherNotFound}
		}
		return Application{}, err
	}
	return val.Validate(v, subtotal, val.now())
}

// Validate checks v against subtotal on the calendar day of today. A nil
// voucher is reported as not found. Checks run in a fixed order and the
// first failing one determines the reason.
func (val *Validator) Validate(v *domain.Voucher, subtotal int64, today time.Time) (Application, error) {
	if v == nil {
		return Application{}, &domain.VoucherError{Reason: domain.VoucherNotFound}
	}
	code := domain.NormalizeVoucherCode(v.Code)
	reject := func(reason domain.VoucherReason) (Application, error) {
		return Application{}, &domain.VoucherError{Code: code, Reason: reason, MinPurchase: v.MinPurchase}
	}

	if !v.IsActive {
		return reject(domain.VoucherInactive)
	}
	day := domain.DateOf(today)
	if v.ActiveFrom != nil && day.Before(*v.ActiveFrom) {
		return reject(domain.VoucherOutOfWindow)
	}
	if v.ActiveTo != nil && day.After(*v.ActiveTo) {
		return reject(domain.VoucherOutOfWindow)
	}
	if v.UsageLimit != nil && *v.UsageLimit > 0 && v.UsedCount >= *v.UsageLimit {
		return reject(domain.VoucherUsageExhausted)
	}
	if subtotal < v.MinPurchase {
		return reject(domain.VoucherBelowMinimum)
	}

	app := Application{Code: code, Kind: v.Kind}
	switch v.Kind {
	case domain.VoucherPercentage:
		app.Amount = decimal.NewFromInt(subtotal).Mul(v.DiscountValue).Div(hundred).IntPart()
	case domain.VoucherFixed:
		app.Amount = v.DiscountValue.IntPart()
	case domain.VoucherFreeShipping:
		app.FreeShipping = true
	default:
		return Application{}, errors.New("voucher kind not supported")
	}
	app.Amount = clamp(app.Amount, 0, subtotal)
	return app, nil
}

func clamp(v, lo, hi int64) int64 {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
