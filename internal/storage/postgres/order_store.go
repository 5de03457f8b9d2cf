package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/10Sirus/orders-api-test/internal/domain"
	"github.com/10Sirus/orders-api-test/internal/pagination"
)

const orderColumns = `id, tenant_id, status, version, total_cents, created_at, updated_at`

// OrderStore persists orders in Postgres. All lookups are tenant scoped.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

func (s *OrderStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.pool, fn)
}

// CreateDraft inserts a new draft order built by the caller.
func (s *OrderStore) CreateDraft(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, tenant_id, status, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.exec(ctx, stmt,
		order.ID, order.TenantID, string(order.Status), order.Version, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create draft order: %w", err)
	}
	return nil
}

// FindByID returns the order or nil when it does not exist for the tenant.
func (s *OrderStore) FindByID(ctx context.Context, id, tenantID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND tenant_id = $2`
	return s.findOne(ctx, query, id, tenantID)
}

// FindByIDForUpdate is FindByID plus an exclusive row lock held until the
// enclosing transaction finishes.
func (s *OrderStore) FindByIDForUpdate(ctx context.Context, id, tenantID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	return s.findOne(ctx, query, id, tenantID)
}

// UpdateToConfirmed moves the order to confirmed, sets the total amount and
// bumps the version. The update is a compare-and-swap on the version the
// caller read: a concurrent mutation makes it affect zero rows.
func (s *OrderStore) UpdateToConfirmed(ctx context.Context, order domain.Order, totalCents int64, now time.Time) (domain.Order, error) {
	const stmt = `
UPDATE orders
SET status = $4, total_cents = $5, version = version + 1, updated_at = $6
WHERE id = $1 AND tenant_id = $2 AND version = $3`

	tag, err := s.exec(ctx, stmt,
		order.ID, order.TenantID, order.Version, string(domain.OrderStatusConfirmed), totalCents, now)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order to confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Order{}, domain.ErrStaleVersion
	}

	order.Status = domain.OrderStatusConfirmed
	order.TotalCents = &totalCents
	order.Version++
	order.UpdatedAt = now
	return order, nil
}

// UpdateToClosed moves the order to closed and bumps the version, guarded by
// the same version compare-and-swap as UpdateToConfirmed.
func (s *OrderStore) UpdateToClosed(ctx context.Context, order domain.Order, now time.Time) (domain.Order, error) {
	const stmt = `
UPDATE orders
SET status = $4, version = version + 1, updated_at = $5
WHERE id = $1 AND tenant_id = $2 AND version = $3`

	tag, err := s.exec(ctx, stmt,
		order.ID, order.TenantID, order.Version, string(domain.OrderStatusClosed), now)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order to closed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Order{}, domain.ErrStaleVersion
	}

	order.Status = domain.OrderStatusClosed
	order.Version++
	order.UpdatedAt = now
	return order, nil
}

// ListByTenant returns up to limit+1 orders in (created_at, id) descending
// order. When a cursor is given only rows strictly before it are returned;
// the id tie-break keeps the order total even for equal timestamps.
func (s *OrderStore) ListByTenant(ctx context.Context, tenantID string, limit int, after *pagination.Cursor) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1`
	args := []any{tenantID}

	if after != nil {
		query += ` AND (created_at < $2 OR (created_at = $2 AND id < $3::uuid))`
		args = append(args, after.CreatedAt, after.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (s *OrderStore) findOne(ctx context.Context, query string, id, tenantID string) (*domain.Order, error) {
	order, err := scanOrder(s.queryRow(ctx, query, id, tenantID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.TenantID, &status, &o.Version, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (s *OrderStore) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return s.pool.Exec(ctx, sql, args...)
}

func (s *OrderStore) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return s.pool.Query(ctx, sql, args...)
}

func (s *OrderStore) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return s.pool.QueryRow(ctx, sql, args...)
}
