package domain

import "time"

// OrderPayload is the staged order handed to the order-submission collaborator.
type OrderPayload struct {
	Reference     string         `json:"reference"`
	Address       Address        `json:"address"`
	PaymentMethod PaymentMethod  `json:"paymentMethod"`
	PaymentFee    int64          `json:"paymentFee"`
	Notes         string         `json:"notes,omitempty"`
	VoucherCode   string         `json:"voucherCode,omitempty"`
	Items         []CartLineItem `json:"items"`
	Breakdown     PriceBreakdown `json:"breakdown"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type OrderReceipt struct {
	Reference  string    `json:"reference"`
	OrderID    string    `json:"orderId,omitempty"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"acceptedAt"`
}
