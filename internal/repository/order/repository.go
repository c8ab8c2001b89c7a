package order

import (
	"context"

	"lamahang-storefront/internal/domain"
)

// Record is a stored order as accepted by the backend.
type Record struct {
	ID        int64
	SessionID string
	Status    string
	Payload   domain.OrderPayload
}

type Repository interface {
	// Create stores the order. A reference seen before yields ErrAlreadyExists.
	Create(ctx context.Context, sessionID, status string, payload domain.OrderPayload) (*Record, error)
	GetByReference(ctx context.Context, reference string) (*Record, error)
	UpdateStatus(ctx context.Context, reference, status string) error
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)
}
