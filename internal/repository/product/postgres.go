package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
)

const productColumns = `id, name, description, price, category, stock, rating::float8, reviews, is_active, supports_cod, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE ($1 = FALSE OR is_active)
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Bool("active_only", activeOnly), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.Int64("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// Upsert inserts the product or updates the row with the same name.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price, category, stock, rating, reviews, is_active, supports_cod)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    stock = EXCLUDED.stock,
    rating = EXCLUDED.rating,
    reviews = EXCLUDED.reviews,
    is_active = EXCLUDED.is_active,
    supports_cod = EXCLUDED.supports_cod
RETURNING id, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.Stock,
		product.Rating,
		product.Reviews,
		product.IsActive,
		product.SupportsCOD,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("upsert", zap.String("name", product.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("upserted", zap.String("name", res.Name), zap.Int64("id", res.ID))
	return &res, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &p.Rating, &p.Reviews, &p.IsActive, &p.SupportsCOD, &p.CreatedAt)
	return p, err
}
