package voucher

import (
	"context"

	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
	voucherrepo "lamahang-storefront/internal/repository/voucher"
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	repo voucherrepo.Repository
}

func New(repo voucherrepo.Repository) *Service {
	return &Service{repo: repo}
}

// ListVouchers returns every stored voucher; eligibility is decided by the
// storefront at pricing time.
func (s *Service) ListVouchers(ctx context.Context) ([]domain.Voucher, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, code string) (*domain.Voucher, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Save(ctx context.Context, v domain.Voucher) error {
	v.Code = domain.NormalizeVoucherCode(v.Code)
	switch {
	case v.Code == "":
		return domain.NewValidationError("code", "code required")
	case !v.Kind.Valid():
		return domain.NewValidationError("type", "type must be percentage, fixed or free_shipping")
	case v.DiscountValue.IsNegative():
		return domain.NewValidationError("discount", "discount must not be negative")
	case v.Kind == domain.VoucherPercentage && v.DiscountValue.GreaterThan(hundred):
		return domain.NewValidationError("discount", "percentage discount must not exceed 100")
	case v.MinPurchase < 0:
		return domain.NewValidationError("minPurchase", "minimum purchase must not be negative")
	case v.ActiveFrom != nil && v.ActiveTo != nil && v.ActiveTo.Before(*v.ActiveFrom):
		return domain.NewValidationError("validTo", "validity window ends before it starts")
	case v.UsageLimit != nil && *v.UsageLimit < 0:
		return domain.NewValidationError("usageLimit", "usage limit must not be negative")
	}
	return s.repo.Upsert(ctx, v)
}

// Redeem counts one use of the voucher against its usage limit.
func (s *Service) Redeem(ctx context.Context, code string) error {
	return s.repo.IncrementUsage(ctx, code)
}
