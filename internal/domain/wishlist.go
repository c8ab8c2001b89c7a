package domain

import "time"

type WishlistItem struct {
	ProductID   int64      `json:"productId"`
	Name        string     `json:"name"`
	UnitPrice   int64      `json:"unitPrice"`
	Category    string     `json:"category,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	ReviewCount *int       `json:"reviewCount,omitempty"`
	SyncState   SyncState  `json:"syncState"`
	SyncedAt    *time.Time `json:"syncedAt,omitempty"`
	Revision    uint64     `json:"revision"`
}
