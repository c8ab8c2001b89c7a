package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("settings_repo")}
}

func (r *postgresRepo) AppSettings(ctx context.Context) (domain.AppSettings, error) {
	if err := r.ensureRows(ctx); err != nil {
		return domain.AppSettings{}, err
	}
	const q = `
SELECT free_shipping_threshold, default_shipping_cost, tax_rate::text, tax_enabled
FROM app_settings
WHERE id = 1
`
	var (
		s       domain.AppSettings
		taxRate string
	)
	if err := r.pool.QueryRow(ctx, q).Scan(&s.FreeShippingThreshold, &s.DefaultShippingCost, &taxRate, &s.TaxEnabled); err != nil {
		r.logger.Error("read app settings", zap.Error(err))
		return domain.AppSettings{}, err
	}
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("app settings tax_rate: %w", err)
	}
	s.TaxRate = rate
	return s, nil
}

func (r *postgresRepo) PaymentSettings(ctx context.Context) (domain.PaymentSettings, error) {
	if err := r.ensureRows(ctx); err != nil {
		return domain.PaymentSettings{}, err
	}
	const q = `
SELECT e_wallet_enabled, cod_enabled, cod_min_order, cod_max_order, cod_fee, virtual_account_enabled, virtual_account_fee
FROM payment_settings
WHERE id = 1
`
	var s domain.PaymentSettings
	err := r.pool.QueryRow(ctx, q).Scan(
		&s.EWalletEnabled,
		&s.CODEnabled,
		&s.CODMinOrder,
		&s.CODMaxOrder,
		&s.CODFee,
		&s.VirtualAccountEnabled,
		&s.VirtualAccountFee,
	)
	if err != nil {
		r.logger.Error("read payment settings", zap.Error(err))
		return domain.PaymentSettings{}, err
	}
	return s, nil
}

func (r *postgresRepo) SaveAppSettings(ctx context.Context, s domain.AppSettings) error {
	const q = `
INSERT INTO app_settings (id, free_shipping_threshold, default_shipping_cost, tax_rate, tax_enabled)
VALUES (1, $1, $2, $3::numeric, $4)
ON CONFLICT (id) DO UPDATE SET
    free_shipping_threshold = EXCLUDED.free_shipping_threshold,
    default_shipping_cost = EXCLUDED.default_shipping_cost,
    tax_rate = EXCLUDED.tax_rate,
    tax_enabled = EXCLUDED.tax_enabled
`
	_, err := r.pool.Exec(ctx, q, s.FreeShippingThreshold, s.DefaultShippingCost, s.TaxRate.String(), s.TaxEnabled)
	return err
}

func (r *postgresRepo) SavePaymentSettings(ctx context.Context, s domain.PaymentSettings) error {
	const q = `
INSERT INTO payment_settings (id, e_wallet_enabled, cod_enabled, cod_min_order, cod_max_order, cod_fee, virtual_account_enabled, virtual_account_fee)
VALUES (1, $1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    e_wallet_enabled = EXCLUDED.e_wallet_enabled,
    cod_enabled = EXCLUDED.cod_enabled,
    cod_min_order = EXCLUDED.cod_min_order,
    cod_max_order = EXCLUDED.cod_max_order,
    cod_fee = EXCLUDED.cod_fee,
    virtual_account_enabled = EXCLUDED.virtual_account_enabled,
    virtual_account_fee = EXCLUDED.virtual_account_fee
`
	_, err := r.pool.Exec(ctx, q, s.EWalletEnabled, s.CODEnabled, s.CODMinOrder, s.CODMaxOrder, s.CODFee, s.VirtualAccountEnabled, s.VirtualAccountFee)
	return err
}

func (r *postgresRepo) ensureRows(ctx context.Context) error {
	const q = `
INSERT INTO app_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
INSERT INTO payment_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		r.logger.Error("ensure settings rows", zap.Error(err))
		return err
	}
	return nil
}
