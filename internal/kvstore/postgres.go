package kvstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lamahang-storefront/internal/domain"
)

// Postgres stores values in kv_collections, scoped by session so one
// database can hold several storefront sessions.
type Postgres struct {
	pool    *pgxpool.Pool
	session string
}

func NewPostgres(pool *pgxpool.Pool, session string) *Postgres {
	return &Postgres{pool: pool, session: session}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `
SELECT value FROM kv_collections WHERE session_id = $1 AND key = $2
`, p.session, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO kv_collections (session_id, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
`, p.session, key, value)
	return err
}
