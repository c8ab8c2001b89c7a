package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
)

const voucherColumns = `code, type, discount::text, min_purchase, description, valid_from, valid_to, usage_limit, used_count, is_active`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("voucher_repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Voucher, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+voucherColumns+` FROM vouchers ORDER BY code`)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers WHERE UPPER(code) = $1`
	v, err := scanVoucher(r.pool.QueryRow(ctx, q, domain.NormalizeVoucherCode(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, v domain.Voucher) error {
	if !v.Kind.Valid() {
		return fmt.Errorf("voucher %s: invalid type", v.Code)
	}
	const q = `
INSERT INTO vouchers (code, type, discount, min_purchase, description, valid_from, valid_to, usage_limit, used_count, is_active)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (UPPER(code)) DO UPDATE SET
    type = EXCLUDED.type,
    discount = EXCLUDED.discount,
    min_purchase = EXCLUDED.min_purchase,
    description = EXCLUDED.description,
    valid_from = EXCLUDED.valid_from,
    valid_to = EXCLUDED.valid_to,
    usage_limit = EXCLUDED.usage_limit,
    is_active = EXCLUDED.is_active
`
	_, err := r.pool.Exec(ctx, q,
		domain.NormalizeVoucherCode(v.Code),
		v.Kind.String(),
		v.DiscountValue.String(),
		v.MinPurchase,
		v.Description,
		dateParam(v.ActiveFrom),
		dateParam(v.ActiveTo),
		v.UsageLimit,
		v.UsedCount,
		v.IsActive,
	)
	if err != nil {
		r.logger.Error("upsert", zap.String("code", v.Code), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) IncrementUsage(ctx context.Context, code string) error {
	const q = `
UPDATE vouchers
SET used_count = used_count + 1
WHERE UPPER(code) = $1 AND (usage_limit IS NULL OR usage_limit = 0 OR used_count < usage_limit)
`
	normalized := domain.NormalizeVoucherCode(code)
	cmd, err := r.pool.Exec(ctx, q, normalized)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByCode(ctx, normalized); err != nil {
		return err
	}
	return fmt.Errorf("voucher %s usage limit reached: %w", normalized, domain.ErrAlreadyExists)
}

func scanVoucher(row pgx.Row) (domain.Voucher, error) {
	var (
		v          domain.Voucher
		kind       string
		discount   string
		validFrom  *time.Time
		validTo    *time.Time
		usageLimit *int
	)
	if err := row.Scan(&v.Code, &kind, &discount, &v.MinPurchase, &v.Description, &validFrom, &validTo, &usageLimit, &v.UsedCount, &v.IsActive); err != nil {
		return v, err
	}
	var err error
	if v.Kind, err = domain.ParseVoucherKind(kind); err != nil {
		return v, err
	}
	if v.DiscountValue, err = decimal.NewFromString(discount); err != nil {
		return v, fmt.Errorf("voucher %s discount: %w", v.Code, err)
	}
	v.ActiveFrom = dateOf(validFrom)
	v.ActiveTo = dateOf(validTo)
	v.UsageLimit = usageLimit
	return v, nil
}

func dateOf(t *time.Time) *domain.Date {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}

func dateParam(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}
