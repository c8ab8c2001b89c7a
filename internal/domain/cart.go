package domain

import "time"

// SyncState reports whether the backend has acknowledged the locally held value.
type SyncState string

const (
	SyncDirty  SyncState = "dirty"
	SyncSynced SyncState = "synced"
)

// CartLineItem is one product line in the local cart. ProductID is the identity key.
type CartLineItem struct {
	ProductID int64      `json:"productId"`
	Name      string     `json:"name"`
	UnitPrice int64      `json:"unitPrice"`
	Quantity  int        `json:"quantity"`
	Category  string     `json:"category,omitempty"`
	SyncState SyncState  `json:"syncState"`
	SyncedAt  *time.Time `json:"syncedAt,omitempty"`
	// Revision is bumped on every local mutation; a sync acknowledgement is
	// only accepted for the revision it was issued against.
	Revision uint64 `json:"revision"`
}

func (l CartLineItem) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// RemoteItem is the backend's record of an acknowledged cart or wishlist
// entry. Quantity is zero for wishlist entries.
type RemoteItem struct {
	SessionID string    `json:"-"`
	ProductID int64     `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity,omitempty"`
	Category  string    `json:"category,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
