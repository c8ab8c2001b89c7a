package settings

import (
	"context"

	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
	settingsrepo "lamahang-storefront/internal/repository/settings"
)

var maxTaxRate = decimal.NewFromInt(100)

type Service struct {
	repo settingsrepo.Repository
}

func New(repo settingsrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AppSettings(ctx context.Context) (domain.AppSettings, error) {
	return s.repo.AppSettings(ctx)
}

func (s *Service) PaymentSettings(ctx context.Context) (domain.PaymentSettings, error) {
	return s.repo.PaymentSettings(ctx)
}

func (s *Service) UpdateAppSettings(ctx context.Context, in domain.AppSettings) error {
	switch {
	case in.FreeShippingThreshold < 0:
		return domain.NewValidationError("freeShippingThreshold", "must not be negative")
	case in.DefaultShippingCost < 0:
		return domain.NewValidationError("defaultShippingCost", "must not be negative")
	case in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(maxTaxRate):
		return domain.NewValidationError("taxRate", "tax rate is a percent between 0 and 100")
	}
	return s.repo.SaveAppSettings(ctx, in)
}

func (s *Service) UpdatePaymentSettings(ctx context.Context, in domain.PaymentSettings) error {
	switch {
	case in.CODMinOrder < 0 || in.CODMaxOrder < 0:
		return domain.NewValidationError("codMinOrder", "COD limits must not be negative")
	case in.CODMinOrder > in.CODMaxOrder:
		return domain.NewValidationError("codMaxOrder", "COD maximum is below the minimum")
	case in.CODFee < 0:
		return domain.NewValidationError("codFee", "must not be negative")
	case in.VirtualAccountFee < 0:
		return domain.NewValidationError("virtualAccountFee", "must not be negative")
	}
	return s.repo.SavePaymentSettings(ctx, in)
}
