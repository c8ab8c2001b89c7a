package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// VoucherKind is the closed set of discount mechanics a voucher can carry.
type VoucherKind int

const (
	VoucherPercentage VoucherKind = iota + 1
	VoucherFixed
	VoucherFreeShipping
)

func ParseVoucherKind(s string) (VoucherKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage":
		return VoucherPercentage, nil
	case "fixed":
		return VoucherFixed, nil
	case "free_shipping":
		return VoucherFreeShipping, nil
	default:
		return 0, fmt.Errorf("unknown voucher type %q", s)
	}
}

func (k VoucherKind) String() string {
	switch k {
	case VoucherPercentage:
		return "percentage"
	case VoucherFixed:
		return "fixed"
	case VoucherFreeShipping:
		return "free_shipping"
	default:
		return fmt.Sprintf("VoucherKind(%d)", int(k))
	}
}

func (k VoucherKind) Valid() bool {
	return k >= VoucherPercentage && k <= VoucherFreeShipping
}

func (k VoucherKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal voucher kind: invalid value %d", int(k))
	}
	return json.Marshal(k.String())
}

func (k *VoucherKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseVoucherKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Voucher mirrors the backend voucher resource. Codes are unique and
// compared case-insensitively.
type Voucher struct {
	Code          string          `json:"code"`
	Kind          VoucherKind     `json:"type"`
	DiscountValue decimal.Decimal `json:"discount"`
	MinPurchase   int64           `json:"minPurchase"`
	Description   string          `json:"description,omitempty"`
	ActiveFrom    *Date           `json:"validFrom,omitempty"`
	ActiveTo      *Date           `json:"validTo,omitempty"`
	UsageLimit    *int            `json:"usageLimit,omitempty"`
	UsedCount     int             `json:"usedCount"`
	IsActive      bool            `json:"isActive"`
}

// EffectiveDiscountValue is DiscountValue, or zero for free-shipping vouchers.
func (v Voucher) EffectiveDiscountValue() decimal.Decimal {
	if v.Kind == VoucherFreeShipping {
		return decimal.Zero
	}
	return v.DiscountValue
}

// NormalizeVoucherCode is the lookup form of a user-entered code.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
