package voucher

import (
	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
)

// Defaults is the built-in catalog used when neither the backend nor the
// local cache has vouchers.
func Defaults() []domain.Voucher {
	return []domain.Voucher{
		{
			Code:          "DISKON10",
			Kind:          domain.VoucherPercentage,
			DiscountValue: decimal.NewFromInt(10),
			MinPurchase:   50000,
			Description:   "Diskon 10% untuk pembelian minimal Rp 50.000",
			IsActive:      true,
		},
		{
			Code:          "DISKON20",
			Kind:          domain.VoucherPercentage,
			DiscountValue: decimal.NewFromInt(20),
			MinPurchase:   100000,
			Description:   "Diskon 20% untuk pembelian minimal Rp 100.000",
			IsActive:      true,
		},
		{
			Code:        "FREESHIP",
			Kind:        domain.VoucherFreeShipping,
			MinPurchase: 0,
			Description: "Gratis ongkos kirim",
			IsActive:    true,
		},
		{
			Code:          "CASHBACK50K",
			Kind:          domain.VoucherFixed,
			DiscountValue: decimal.NewFromInt(50000),
			MinPurchase:   200000,
			Description:   "Potongan Rp 50.000 untuk pembelian minimal Rp 200.000",
			IsActive:      true,
		},
	}
}
