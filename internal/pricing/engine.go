// Package pricing turns a cart total, a shipping quote and an optional
// voucher into the breakdown shown at checkout.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/voucher"
)

// DefaultTaxRate is the 11% VAT applied when settings are unavailable.
var DefaultTaxRate = decimal.RequireFromString("0.11")

type Engine struct{}

func NewEngine() Engine { return Engine{} }

// ComputeBreakdown is deterministic. Tax applies to the discounted subtotal
// only; shipping is never taxed.
func (Engine) ComputeBreakdown(cartTotal, shippingCost int64, app *voucher.Application, taxRate decimal.Decimal) domain.PriceBreakdown {
	subtotal := cartTotal
	discount := int64(0)
	shipping := shippingCost

	if app != nil {
		switch app.Kind {
		case domain.VoucherPercentage, domain.VoucherFixed:
			discount = app.Amount
		case domain.VoucherFreeShipping:
			shipping = 0
		default:
			panic(fmt.Sprintf("pricing: unhandled voucher kind %v", app.Kind))
		}
	}

	taxable := subtotal - discount
	tax := decimal.NewFromInt(taxable).Mul(taxRate).Round(0).IntPart()

	return domain.PriceBreakdown{
		Subtotal:        subtotal,
		VoucherDiscount: discount,
		ShippingCost:    shipping,
		Tax:             tax,
		Total:           subtotal - discount + shipping + tax,
	}
}
