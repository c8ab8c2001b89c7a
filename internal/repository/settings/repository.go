package settings

import (
	"context"

	"lamahang-storefront/internal/domain"
)

// Repository reads and writes the singleton settings rows. Reads fall back
// to the column defaults when the row has not been written yet.
type Repository interface {
	AppSettings(ctx context.Context) (domain.AppSettings, error)
	PaymentSettings(ctx context.Context) (domain.PaymentSettings, error)
	SaveAppSettings(ctx context.Context, s domain.AppSettings) error
	SavePaymentSettings(ctx context.Context, s domain.PaymentSettings) error
}
