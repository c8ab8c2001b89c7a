package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
)

func wish(id int64) domain.WishlistItem {
	return domain.WishlistItem{ProductID: id, Name: "Item", UnitPrice: 10000}
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewWishlistStore(kvstore.NewMemory(), nil)
	calls := 0
	s.Subscribe(func([]domain.WishlistItem) { calls++ })

	require.NoError(t, s.Add(ctx, wish(1)))
	require.NoError(t, s.MarkSynced(ctx, 1))
	require.NoError(t, s.Add(ctx, wish(1)))

	assert.Equal(t, 1, s.TotalItems())
	assert.Equal(t, 2, calls)
	assert.Empty(t, s.UnsyncedItems())
}

func TestWishlist_Toggle(t *testing.T) {
	ctx := context.Background()
	s := NewWishlistStore(kvstore.NewMemory(), nil)

	added, err := s.Toggle(ctx, wish(3))
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.Contains(3))

	added, err = s.Toggle(ctx, wish(3))
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, s.Contains(3))
}

func TestWishlist_RemoveAndReload(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := NewWishlistStore(kv, nil)
	require.NoError(t, s.Add(ctx, wish(1)))
	require.NoError(t, s.Add(ctx, wish(2)))
	require.NoError(t, s.Remove(ctx, 1))
	require.NoError(t, s.Remove(ctx, 42))

	reloaded := NewWishlistStore(kv, nil)
	require.NoError(t, reloaded.Load(ctx))
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, domain.SyncDirty, items[0].SyncState)
}

func TestWishlist_MarkSyncedIfCurrent(t *testing.T) {
	ctx := context.Background()
	s := NewWishlistStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(ctx, wish(5)))
	item := s.Items()[0]

	applied, err := s.MarkSyncedIfCurrent(ctx, 5, item.Revision+1)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = s.MarkSyncedIfCurrent(ctx, 5, item.Revision)
	require.NoError(t, err)
	assert.True(t, applied)

	require.NoError(t, s.MarkUnsynced(ctx, 5))
	assert.Len(t, s.UnsyncedItems(), 1)
}
