package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/10Sirus/orders-api-test/internal/domain"
)

// OutboxStore persists domain events alongside the state transitions that
// produce them. Publishing is external; this store only records events and
// exposes what a publisher needs to drain them.
type OutboxStore struct {
	pool *pgxpool.Pool
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

// RecordEvent inserts the event. No dedup happens at this layer.
func (s *OutboxStore) RecordEvent(ctx context.Context, event domain.OutboxEvent) error {
	const stmt = `
INSERT INTO outbox (id, event_type, order_id, tenant_id, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.exec(ctx, stmt,
		event.ID, event.EventType, event.OrderID, event.TenantID, []byte(event.Payload), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("record outbox event: %w", err)
	}
	return nil
}

// ListUnpublished returns events not yet delivered, oldest first.
func (s *OutboxStore) ListUnpublished(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	const query = `
SELECT id, event_type, order_id, tenant_id, payload, published_at, created_at
FROM outbox
WHERE published_at IS NULL
ORDER BY created_at ASC
LIMIT $1`

	rows, err := s.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.OrderID, &e.TenantID, &e.Payload, &e.PublishedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}
	return events, nil
}

// MarkPublished stamps the event as delivered.
func (s *OutboxStore) MarkPublished(ctx context.Context, id string, now time.Time) error {
	const stmt = `UPDATE outbox SET published_at = $2 WHERE id = $1`

	tag, err := s.exec(ctx, stmt, id, now)
	if err != nil {
		return fmt.Errorf("mark outbox event published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark outbox event published: no rows updated")
	}
	return nil
}

func (s *OutboxStore) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return s.pool.Exec(ctx, sql, args...)
}

func (s *OutboxStore) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return s.pool.Query(ctx, sql, args...)
}
