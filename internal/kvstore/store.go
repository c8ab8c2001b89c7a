// Package kvstore persists session collections as opaque JSON blobs under
// fixed keys. Backends are last-write-wins per key.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lamahang-storefront/internal/domain"
)

const (
	KeyCart      = "cart"
	KeyWishlist  = "wishlist"
	KeyAddresses = "addresses"
	KeyVouchers  = "vouchers"
)

// Store is the persistence contract shared by every backend. Get returns
// domain.ErrNotFound when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Load decodes the JSON value stored under key into dst. A missing key
// leaves dst untouched and reports found=false.
func Load(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save encodes v as JSON and writes it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
