package wishlist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"lamahang-storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Upsert(ctx context.Context, item domain.RemoteItem) (*domain.RemoteItem, error) {
	const q = `
INSERT INTO wishlist_items (session_id, product_id, name, unit_price, category, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (session_id, product_id) DO UPDATE SET
    name = EXCLUDED.name,
    unit_price = EXCLUDED.unit_price,
    category = EXCLUDED.category,
    updated_at = EXCLUDED.updated_at
RETURNING updated_at
`
	res := item
	res.Quantity = 0
	if err := r.pool.QueryRow(ctx, q, item.SessionID, item.ProductID, item.Name, item.UnitPrice, item.Category).Scan(&res.UpdatedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.RemoteItem, error) {
	const q = `
SELECT session_id, product_id, name, unit_price, category, updated_at
FROM wishlist_items
WHERE session_id = $1
ORDER BY updated_at, product_id
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.RemoteItem
	for rows.Next() {
		var it domain.RemoteItem
		if err := rows.Scan(&it.SessionID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Category, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID string, productID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE session_id = $1 AND product_id = $2`, sessionID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
