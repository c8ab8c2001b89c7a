package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lamahang-storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, sessionID, status string, payload domain.OrderPayload) (*Record, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode order %s: %w", payload.Reference, err)
	}
	const q = `
INSERT INTO orders (reference, session_id, payment_method, voucher_code, total, status, payload, created_at)
VALUES ($1::text::uuid, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
ON CONFLICT (reference) DO NOTHING
RETURNING id
`
	rec := Record{SessionID: sessionID, Status: status, Payload: payload}
	err = r.pool.QueryRow(ctx, q,
		payload.Reference,
		sessionID,
		string(payload.PaymentMethod),
		payload.VoucherCode,
		payload.Breakdown.Total,
		status,
		body,
		payload.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", payload.Reference, domain.ErrAlreadyExists)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *postgresRepo) GetByReference(ctx context.Context, reference string) (*Record, error) {
	const q = `SELECT id, session_id, status, payload FROM orders WHERE reference::text = $1`
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, reference, status string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE reference::text = $1`, reference, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	const q = `
SELECT id, session_id, status, payload
FROM orders
WHERE session_id = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec  Record
		body []byte
	)
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.Status, &body); err != nil {
		return rec, err
	}
	if err := json.Unmarshal(body, &rec.Payload); err != nil {
		return rec, fmt.Errorf("decode order %d: %w", rec.ID, err)
	}
	return rec, nil
}
