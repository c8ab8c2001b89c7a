// Package cartsync pushes dirty cart and wishlist items to the backend and
// marks them synced once acknowledged.
package cartsync

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"lamahang-storefront/internal/backend"
	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/store"
	"lamahang-storefront/internal/telemetry"
)

const (
	CollectionCart     = "cart"
	CollectionWishlist = "wishlist"
)

// Pusher upserts one item on the backend.
type Pusher interface {
	PutCartItem(ctx context.Context, item domain.CartLineItem) error
	PutWishlistItem(ctx context.Context, item domain.WishlistItem) error
}

type Syncer struct {
	cart     *store.CartStore
	wishlist *store.WishlistStore
	pusher   Pusher
	logger   *zap.Logger
	metrics  *telemetry.Metrics

	maxTries        uint
	initialInterval time.Duration
}

func New(cart *store.CartStore, wishlist *store.WishlistStore, pusher Pusher, logger *zap.Logger, metrics *telemetry.Metrics) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		cart:            cart,
		wishlist:        wishlist,
		pusher:          pusher,
		logger:          logger,
		metrics:         metrics,
		maxTries:        3,
		initialInterval: 200 * time.Millisecond,
	}
}

// Run syncs every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.SyncOnce(ctx); err != nil {
			s.logger.Warn("sync pass incomplete", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SyncOnce pushes every dirty item once (with retries). Items whose push
// fails stay dirty; the returned error joins one *domain.SyncError per
// failed item. An acknowledgement for an item that changed while the push
// was in flight is discarded and the item stays dirty.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	var errs []error

	for _, item := range s.cart.UnsyncedItems() {
		err := s.push(ctx, func() error { return s.pusher.PutCartItem(ctx, item) })
		if err != nil {
			errs = append(errs, s.failed(ctx, CollectionCart, item.ProductID, err))
			continue
		}
		applied, err := s.cart.MarkSyncedIfCurrent(ctx, item.ProductID, item.Revision)
		s.acknowledged(ctx, CollectionCart, item.ProductID, applied, err)
	}

	for _, item := range s.wishlist.UnsyncedItems() {
		err := s.push(ctx, func() error { return s.pusher.PutWishlistItem(ctx, item) })
		if err != nil {
			errs = append(errs, s.failed(ctx, CollectionWishlist, item.ProductID, err))
			continue
		}
		applied, err := s.wishlist.MarkSyncedIfCurrent(ctx, item.ProductID, item.Revision)
		s.acknowledged(ctx, CollectionWishlist, item.ProductID, applied, err)
	}

	return errors.Join(errs...)
}

func (s *Syncer) push(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxTries))
	return err
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return false
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

func (s *Syncer) failed(ctx context.Context, collection string, productID int64, err error) error {
	s.metrics.SyncFailed(ctx, collection)
	s.logger.Warn("push item",
		zap.String("collection", collection),
		zap.Int64("product_id", productID),
		zap.Error(err),
	)
	return &domain.SyncError{Collection: collection, ProductID: productID, Err: err}
}

func (s *Syncer) acknowledged(ctx context.Context, collection string, productID int64, applied bool, err error) {
	if err != nil {
		s.logger.Error("persist sync mark",
			zap.String("collection", collection),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
	}
	if !applied {
		s.logger.Debug("stale acknowledgement discarded",
			zap.String("collection", collection),
			zap.Int64("product_id", productID),
		)
		return
	}
	s.metrics.Synced(ctx, collection)
}
