// Package testutil provides the shared Postgres fixture for integration
// tests. It uses TEST_DATABASE_URL when set and otherwise starts a throwaway
// Postgres container.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/10Sirus/orders-api-test/internal/domain"
	"github.com/10Sirus/orders-api-test/migrations"
)

const testDBLockID int64 = 707312449

// NewTestPool returns a migrated pool serialized across test binaries by an
// advisory lock.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := TestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrations.Apply(ctx, dsn); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping Postgres integration tests: %v", err)
	}
	t.Cleanup(pool.Close)

	lockTestDB(t, pool)

	return pool
}

// TestDSN returns the database the integration tests run against:
// TEST_DATABASE_URL when set, otherwise a throwaway container.
func TestDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	return startPostgres(t)
}

func startPostgres(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "orders", "POSTGRES_USER": "orders", "POSTGRES_DB": "orders"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skipping Postgres integration tests: start container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("postgres://orders:orders@%s:%s/orders?sslmode=disable", host, port.Port())
}

// TruncateAll wipes every table between tests.
func TruncateAll(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `TRUNCATE orders, idempotency_keys, outbox`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// InsertOrder seeds an order row directly.
func InsertOrder(t *testing.T, ctx context.Context, pool *pgxpool.Pool, order domain.Order) {
	t.Helper()
	_, err := pool.Exec(ctx, `
INSERT INTO orders (id, tenant_id, status, version, total_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.TenantID, string(order.Status), order.Version, order.TotalCents, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}
}

// CountOutboxEvents returns the number of outbox rows for the order.
func CountOutboxEvents(t *testing.T, ctx context.Context, pool *pgxpool.Pool, orderID string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE order_id = $1`, orderID).Scan(&n); err != nil {
		t.Fatalf("count outbox events: %v", err)
	}
	return n
}

func lockTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire lock conn: %v", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, testDBLockID); err != nil {
		conn.Release()
		t.Fatalf("acquire test lock: %v", err)
	}

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, testDBLockID)
		conn.Release()
	})
}
