package voucher

import (
	"context"

	"lamahang-storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Voucher, error)
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
	Upsert(ctx context.Context, v domain.Voucher) error
	// IncrementUsage records one redemption. It reports ErrNotFound for an
	// unknown code and ErrAlreadyExists once the usage limit is reached.
	IncrementUsage(ctx context.Context, code string) error
}
