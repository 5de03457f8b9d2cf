package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/10Sirus/orders-api-test/internal/domain"
)

// IdempotencyStore persists idempotency records keyed by (tenant, key).
// The composite primary key is the mutual-exclusion mechanism for concurrent
// first uses of the same key.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

func (s *IdempotencyStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.pool, fn)
}

// Find returns the record or nil when none exists for the pair.
func (s *IdempotencyStore) Find(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
	const query = `
SELECT tenant_id, key, body_hash, response, created_at
FROM idempotency_keys
WHERE tenant_id = $1 AND key = $2`

	var r domain.IdempotencyRecord
	err := s.queryRow(ctx, query, tenantID, key).
		Scan(&r.TenantID, &r.Key, &r.BodyHash, &r.Response, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return &r, nil
}

// Store inserts a fresh record. A live record for the same (tenant, key)
// surfaces as ErrIdempotencyConflict; callers delete expired records first.
func (s *IdempotencyStore) Store(ctx context.Context, record domain.IdempotencyRecord) error {
	const stmt = `
INSERT INTO idempotency_keys (tenant_id, key, body_hash, response, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := s.exec(ctx, stmt,
		record.TenantID, record.Key, record.BodyHash, []byte(record.Response), record.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdempotencyConflict
		}
		return fmt.Errorf("store idempotency record: %w", err)
	}
	return nil
}

// Delete removes the record for the pair. Deleting a missing record is a no-op.
func (s *IdempotencyStore) Delete(ctx context.Context, tenantID, key string) error {
	const stmt = `DELETE FROM idempotency_keys WHERE tenant_id = $1 AND key = $2`

	if _, err := s.exec(ctx, stmt, tenantID, key); err != nil {
		return fmt.Errorf("delete idempotency record: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return s.pool.Exec(ctx, sql, args...)
}

func (s *IdempotencyStore) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return s.pool.QueryRow(ctx, sql, args...)
}
