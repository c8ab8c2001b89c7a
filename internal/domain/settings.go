package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AppSettings carries the store-wide values the pricing core reads.
type AppSettings struct {
	FreeShippingThreshold int64           `json:"freeShippingThreshold"`
	DefaultShippingCost   int64           `json:"defaultShippingCost"`
	TaxRate               decimal.Decimal `json:"taxRate"` // percent, e.g. 11
	TaxEnabled            bool            `json:"taxEnabled"`
}

// TaxFraction converts the percent rate into the multiplier used by pricing.
func (s AppSettings) TaxFraction() decimal.Decimal {
	if !s.TaxEnabled {
		return decimal.Zero
	}
	return s.TaxRate.Div(decimal.NewFromInt(100))
}

type PaymentSettings struct {
	EWalletEnabled        bool  `json:"eWalletEnabled"`
	CODEnabled            bool  `json:"codEnabled"`
	CODMinOrder           int64 `json:"codMinOrder"`
	CODMaxOrder           int64 `json:"codMaxOrder"`
	CODFee                int64 `json:"codFee"`
	VirtualAccountEnabled bool  `json:"virtualAccountEnabled"`
	VirtualAccountFee     int64 `json:"virtualAccountFee"`
}

type PaymentMethod string

const (
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentEWallet        PaymentMethod = "e_wallet"
	PaymentCOD            PaymentMethod = "cod"
	PaymentVirtualAccount PaymentMethod = "virtual_account"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentBankTransfer, PaymentEWallet, PaymentCOD, PaymentVirtualAccount:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// Fee is the method-specific surcharge. It is kept apart from shipping.
func (m PaymentMethod) Fee(s PaymentSettings) int64 {
	switch m {
	case PaymentCOD:
		return s.CODFee
	case PaymentVirtualAccount:
		return s.VirtualAccountFee
	default:
		return 0
	}
}
