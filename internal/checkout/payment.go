package checkout

import (
	"fmt"

	"lamahang-storefront/internal/domain"
)

func checkPaymentEnabled(m domain.PaymentMethod, s domain.PaymentSettings) error {
	enabled := true
	switch m {
	case domain.PaymentEWallet:
		enabled = s.EWalletEnabled
	case domain.PaymentCOD:
		enabled = s.CODEnabled
	case domain.PaymentVirtualAccount:
		enabled = s.VirtualAccountEnabled
	}
	if !enabled {
		return domain.NewValidationError("paymentMethod", fmt.Sprintf("payment method %s is not available", m))
	}
	return nil
}

// checkPaymentEligible applies the order-dependent rules. COD needs the
// order total within the configured range and every product to allow it.
func checkPaymentEligible(m domain.PaymentMethod, s domain.PaymentSettings, total int64, products []domain.Product) error {
	if err := checkPaymentEnabled(m, s); err != nil {
		return err
	}
	if m != domain.PaymentCOD {
		return nil
	}
	if s.CODMinOrder > 0 && total < s.CODMinOrder {
		return domain.NewValidationError("paymentMethod", fmt.Sprintf("cash on delivery requires an order of at least %d", s.CODMinOrder))
	}
	if s.CODMaxOrder > 0 && total > s.CODMaxOrder {
		return domain.NewValidationError("paymentMethod", fmt.Sprintf("cash on delivery is limited to orders up to %d", s.CODMaxOrder))
	}
	for _, p := range products {
		if !p.SupportsCOD {
			return domain.NewValidationError("paymentMethod", fmt.Sprintf("%s cannot be paid on delivery", p.Name))
		}
	}
	return nil
}
