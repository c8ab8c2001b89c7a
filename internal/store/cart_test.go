package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
)

type failingKV struct {
	kvstore.Store
	err error
}

func (f failingKV) Put(context.Context, string, []byte) error { return f.err }

func shirt() domain.CartLineItem {
	return domain.CartLineItem{ProductID: 1, Name: "Kemeja Batik", UnitPrice: 150000, Category: "fashion"}
}

func mug() domain.CartLineItem {
	return domain.CartLineItem{ProductID: 2, Name: "Mug", UnitPrice: 25000}
}

func persistedCart(t *testing.T, kv kvstore.Store) []domain.CartLineItem {
	t.Helper()
	var items []domain.CartLineItem
	_, err := kvstore.Load(context.Background(), kv, kvstore.KeyCart, &items)
	require.NoError(t, err)
	return items
}

func TestCart_AddMergesQuantities(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := NewCartStore(kv, nil)

	require.NoError(t, s.Add(ctx, shirt(), 2))
	require.NoError(t, s.Add(ctx, shirt(), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, domain.SyncDirty, items[0].SyncState)
	assert.Equal(t, 5, s.TotalItems())
	assert.Equal(t, int64(750000), s.TotalPrice())
	assert.Equal(t, items, persistedCart(t, kv))
}

func TestCart_AddDefaultsQuantityToOne(t *testing.T) {
	s := NewCartStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(context.Background(), mug(), 0))
	item, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

func TestCart_AddAfterSyncMarksDirty(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(ctx, shirt(), 1))
	require.NoError(t, s.MarkSynced(ctx, 1))

	item, _ := s.Get(1)
	require.Equal(t, domain.SyncSynced, item.SyncState)
	require.NotNil(t, item.SyncedAt)

	require.NoError(t, s.Add(ctx, shirt(), 1))
	item, _ = s.Get(1)
	assert.Equal(t, domain.SyncDirty, item.SyncState)
	assert.Nil(t, item.SyncedAt)
	assert.Equal(t, 2, item.Quantity)
}

func TestCart_SetQuantityBelowOneRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(ctx, shirt(), 2))
	require.NoError(t, s.Add(ctx, mug(), 1))

	require.NoError(t, s.SetQuantity(ctx, 1, 0))
	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Len(t, s.Items(), 1)

	require.NoError(t, s.SetQuantity(ctx, 2, 7))
	item, _ := s.Get(2)
	assert.Equal(t, 7, item.Quantity)
}

func TestCart_RemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := NewCartStore(kv, nil)
	calls := 0
	s.Subscribe(func([]domain.CartLineItem) { calls++ })

	require.NoError(t, s.Remove(ctx, 99))
	assert.Equal(t, 0, calls)
	_, err := kv.Get(ctx, kvstore.KeyCart)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCart_MarkSyncedTwiceUpdatesTimestamp(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Add(ctx, shirt(), 1))
	require.NoError(t, s.MarkSynced(ctx, 1))
	clock = clock.Add(time.Minute)
	require.NoError(t, s.MarkSynced(ctx, 1))

	item, _ := s.Get(1)
	assert.Equal(t, domain.SyncSynced, item.SyncState)
	assert.Equal(t, clock, *item.SyncedAt)
	assert.Empty(t, s.UnsyncedItems())

	require.NoError(t, s.MarkUnsynced(ctx, 1))
	assert.Len(t, s.UnsyncedItems(), 1)
}

func TestCart_MarkSyncedIfCurrentRejectsStaleRevision(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(ctx, shirt(), 1))
	observed, _ := s.Get(1)

	// the user changes the quantity while the push is in flight
	require.NoError(t, s.SetQuantity(ctx, 1, 4))

	applied, err := s.MarkSyncedIfCurrent(ctx, 1, observed.Revision)
	require.NoError(t, err)
	assert.False(t, applied)
	item, _ := s.Get(1)
	assert.Equal(t, domain.SyncDirty, item.SyncState)

	applied, err = s.MarkSyncedIfCurrent(ctx, 1, item.Revision)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestCart_MarkSyncedIfCurrentAfterRemoveAndReadd(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(ctx, shirt(), 1))
	observed, _ := s.Get(1)
	require.NoError(t, s.Remove(ctx, 1))
	require.NoError(t, s.Add(ctx, shirt(), 1))

	applied, err := s.MarkSyncedIfCurrent(ctx, 1, observed.Revision)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestCart_RemoveIfCurrentKeepsLaterEdits(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := NewCartStore(kv, nil)
	require.NoError(t, s.Add(ctx, shirt(), 1))
	require.NoError(t, s.Add(ctx, mug(), 2))
	ordered := s.Items()

	// the mug quantity changes and a new line arrives after the snapshot
	require.NoError(t, s.SetQuantity(ctx, 2, 5))
	require.NoError(t, s.Add(ctx, domain.CartLineItem{ProductID: 3, Name: "Sambal", UnitPrice: 30000}, 1))

	require.NoError(t, s.RemoveIfCurrent(ctx, ordered))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(3), items[1].ProductID)
	assert.Len(t, persistedCart(t, kv), 2)
}

func TestCart_RemoveIfCurrentEmptiesUntouchedCart(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)
	require.NoError(t, s.Add(ctx, shirt(), 1))
	require.NoError(t, s.Add(ctx, mug(), 1))

	require.NoError(t, s.RemoveIfCurrent(ctx, s.Items()))
	assert.Empty(t, s.Items())
	assert.Zero(t, s.TotalItems())
}

func TestCart_LoadRehydrates(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	first := NewCartStore(kv, nil)
	first.now = func() time.Time { return time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC) }
	require.NoError(t, first.Add(ctx, shirt(), 2))
	require.NoError(t, first.Add(ctx, mug(), 1))
	require.NoError(t, first.MarkSynced(ctx, 2))

	second := NewCartStore(kv, nil)
	require.NoError(t, second.Load(ctx))
	assert.Equal(t, first.Items(), second.Items())

	// new mutations keep revisions increasing past the loaded ones
	before, _ := second.Get(1)
	require.NoError(t, second.Add(ctx, shirt(), 1))
	after, _ := second.Get(1)
	assert.Greater(t, after.Revision, before.Revision)
}

func TestCart_PersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	s := NewCartStore(failingKV{Store: kvstore.NewMemory(), err: boom}, nil)

	err := s.Add(ctx, shirt(), 1)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.TotalItems())
}

func TestCart_SubscribersReceiveSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)

	var got [][]domain.CartLineItem
	unsubscribe := s.Subscribe(func(items []domain.CartLineItem) { got = append(got, items) })

	require.NoError(t, s.Add(ctx, shirt(), 1))
	require.NoError(t, s.Add(ctx, mug(), 1))
	unsubscribe()
	require.NoError(t, s.Clear(ctx))

	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	assert.Len(t, got[1], 2)

	assert.Equal(t, 1, got[0][0].Quantity)
	assert.Empty(t, s.Items())
}

func TestCart_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(kvstore.NewMemory(), nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Add(ctx, shirt(), 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.TotalItems())
}
