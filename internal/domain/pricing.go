package domain

// PriceBreakdown is derived on demand and never persisted.
// Total = Subtotal - VoucherDiscount + ShippingCost + Tax.
type PriceBreakdown struct {
	Subtotal        int64 `json:"subtotal"`
	VoucherDiscount int64 `json:"voucherDiscount"`
	ShippingCost    int64 `json:"shippingCost"`
	Tax             int64 `json:"tax"`
	Total           int64 `json:"total"`
}
