package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
)

// CartStore owns the session cart. There is at most one line per product
// and every line has a quantity of at least one.
type CartStore struct {
	kv     kvstore.Store
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	items    []domain.CartLineItem
	revision uint64

	subs subscribers[[]domain.CartLineItem]
}

func NewCartStore(kv kvstore.Store, logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStore{kv: kv, logger: logger, now: time.Now}
}

// Load replaces the in-memory cart with the persisted one.
func (s *CartStore) Load(ctx context.Context) error {
	var items []domain.CartLineItem
	if _, err := kvstore.Load(ctx, s.kv, kvstore.KeyCart, &items); err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	items = slices.DeleteFunc(items, func(it domain.CartLineItem) bool { return it.Quantity < 1 })

	s.mu.Lock()
	s.items = items
	for _, it := range items {
		s.revision = max(s.revision, it.Revision)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subs.notify(snap)
	return nil
}

// Subscribe registers fn to receive a copy of the cart after every change.
func (s *CartStore) Subscribe(fn func([]domain.CartLineItem)) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Add inserts item or increments the existing line's quantity. Quantities
// below one are treated as one.
func (s *CartStore) Add(ctx context.Context, item domain.CartLineItem, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, func() bool {
		if i := s.indexLocked(item.ProductID); i >= 0 {
			s.items[i].Quantity += quantity
			s.touchLocked(i)
			return true
		}
		item.Quantity = quantity
		s.items = append(s.items, item)
		s.touchLocked(len(s.items) - 1)
		return true
	})
}

// SetQuantity overwrites the line's quantity; a quantity below one removes
// the line.
func (s *CartStore) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}
	return s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.items[i].Quantity = quantity
		s.touchLocked(i)
		return true
	})
}

func (s *CartStore) Remove(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.items = slices.Delete(s.items, i, i+1)
		return true
	})
}

func (s *CartStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// RemoveIfCurrent drops the given lines when they are unchanged since the
// snapshot was taken. Lines added or edited in the meantime are kept.
func (s *CartStore) RemoveIfCurrent(ctx context.Context, items []domain.CartLineItem) error {
	return s.mutate(ctx, func() bool {
		n := len(s.items)
		s.items = slices.DeleteFunc(s.items, func(it domain.CartLineItem) bool {
			return slices.ContainsFunc(items, func(o domain.CartLineItem) bool {
				return o.ProductID == it.ProductID && o.Revision == it.Revision
			})
		})
		return len(s.items) != n
	})
}

// MarkSynced flags the line as acknowledged by the backend.
func (s *CartStore) MarkSynced(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.markSyncedLocked(i)
		return true
	})
}

// MarkSyncedIfCurrent marks the line synced only if it has not changed since
// revision was observed. It reports whether the mark was applied.
func (s *CartStore) MarkSyncedIfCurrent(ctx context.Context, productID int64, revision uint64) (bool, error) {
	applied := false
	err := s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 || s.items[i].Revision != revision {
			return false
		}
		s.markSyncedLocked(i)
		applied = true
		return true
	})
	return applied, err
}

func (s *CartStore) MarkUnsynced(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.items[i].SyncState = domain.SyncDirty
		s.items[i].SyncedAt = nil
		return true
	})
}

func (s *CartStore) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *CartStore) Get(productID int64) (domain.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(productID); i >= 0 {
		return s.items[i], true
	}
	return domain.CartLineItem{}, false
}

func (s *CartStore) UnsyncedItems() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CartLineItem
	for _, it := range s.items {
		if it.SyncState != domain.SyncSynced {
			out = append(out, it)
		}
	}
	return out
}

// TotalItems is the sum of quantities across lines.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *CartStore) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// mutate runs fn under the lock. When fn reports a change the new cart is
// persisted before the lock is released and subscribers are notified.
// A failed write leaves the in-memory change in place.
func (s *CartStore) mutate(ctx context.Context, fn func() bool) error {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return nil
	}
	snap := s.snapshotLocked()
	err := kvstore.Save(ctx, s.kv, kvstore.KeyCart, snap)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("persist cart", zap.Error(err))
		err = fmt.Errorf("persist cart: %w", err)
	}
	s.subs.notify(snap)
	return err
}

func (s *CartStore) indexLocked(productID int64) int {
	return slices.IndexFunc(s.items, func(it domain.CartLineItem) bool { return it.ProductID == productID })
}

func (s *CartStore) touchLocked(i int) {
	s.revision++
	s.items[i].Revision = s.revision
	s.items[i].SyncState = domain.SyncDirty
	s.items[i].SyncedAt = nil
}

func (s *CartStore) markSyncedLocked(i int) {
	now := s.now()
	s.items[i].SyncState = domain.SyncSynced
	s.items[i].SyncedAt = &now
}

func (s *CartStore) snapshotLocked() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}
