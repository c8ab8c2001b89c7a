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

// WishlistStore owns the session wishlist, a set keyed by product id.
type WishlistStore struct {
	kv     kvstore.Store
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	items    []domain.WishlistItem
	revision uint64

	subs subscribers[[]domain.WishlistItem]
}

func NewWishlistStore(kv kvstore.Store, logger *zap.Logger) *WishlistStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishlistStore{kv: kv, logger: logger, now: time.Now}
}

func (s *WishlistStore) Load(ctx context.Context) error {
	var items []domain.WishlistItem
	if _, err := kvstore.Load(ctx, s.kv, kvstore.KeyWishlist, &items); err != nil {
		return fmt.Errorf("load wishlist: %w", err)
	}

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

func (s *WishlistStore) Subscribe(fn func([]domain.WishlistItem)) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Add inserts item as dirty. Adding a product already present is a no-op.
func (s *WishlistStore) Add(ctx context.Context, item domain.WishlistItem) error {
	return s.mutate(ctx, func() bool {
		if s.indexLocked(item.ProductID) >= 0 {
			return false
		}
		s.items = append(s.items, item)
		s.touchLocked(len(s.items) - 1)
		return true
	})
}

func (s *WishlistStore) Remove(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.items = slices.Delete(s.items, i, i+1)
		return true
	})
}

// Toggle removes the product if present, otherwise adds it. It reports
// whether the product is in the wishlist afterwards.
func (s *WishlistStore) Toggle(ctx context.Context, item domain.WishlistItem) (bool, error) {
	added := false
	err := s.mutate(ctx, func() bool {
		if i := s.indexLocked(item.ProductID); i >= 0 {
			s.items = slices.Delete(s.items, i, i+1)
			return true
		}
		s.items = append(s.items, item)
		s.touchLocked(len(s.items) - 1)
		added = true
		return true
	})
	return added, err
}

func (s *WishlistStore) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

func (s *WishlistStore) MarkSynced(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.markSyncedLocked(i)
		return true
	})
}

func (s *WishlistStore) MarkSyncedIfCurrent(ctx context.Context, productID int64, revision uint64) (bool, error) {
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

func (s *WishlistStore) MarkUnsynced(ctx context.Context, productID int64) error {
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

func (s *WishlistStore) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *WishlistStore) UnsyncedItems() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WishlistItem
	for _, it := range s.items {
		if it.SyncState != domain.SyncSynced {
			out = append(out, it)
		}
	}
	return out
}

func (s *WishlistStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *WishlistStore) mutate(ctx context.Context, fn func() bool) error {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return nil
	}
	snap := s.snapshotLocked()
	err := kvstore.Save(ctx, s.kv, kvstore.KeyWishlist, snap)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("persist wishlist", zap.Error(err))
		err = fmt.Errorf("persist wishlist: %w", err)
	}
	s.subs.notify(snap)
	return err
}

func (s *WishlistStore) indexLocked(productID int64) int {
	return slices.IndexFunc(s.items, func(it domain.WishlistItem) bool { return it.ProductID == productID })
}

func (s *WishlistStore) touchLocked(i int) {
	s.revision++
	s.items[i].Revision = s.revision
	s.items[i].SyncState = domain.SyncDirty
	s.items[i].SyncedAt = nil
}

func (s *WishlistStore) markSyncedLocked(i int) {
	now := s.now()
	s.items[i].SyncState = domain.SyncSynced
	s.items[i].SyncedAt = &now
}

func (s *WishlistStore) snapshotLocked() []domain.WishlistItem {
	out := make([]domain.WishlistItem, len(s.items))
	copy(out, s.items)
	return out
}
