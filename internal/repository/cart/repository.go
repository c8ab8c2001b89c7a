package cart

import (
	"context"

	"lamahang-storefront/internal/domain"
)

// Repository stores the cart lines a session has synced to the backend.
type Repository interface {
	Upsert(ctx context.Context, item domain.RemoteItem) (*domain.RemoteItem, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.RemoteItem, error)
	Delete(ctx context.Context, sessionID string, productID int64) error
}
