package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/10Sirus/orders-api-test/internal/app"
	"github.com/10Sirus/orders-api-test/internal/clock"
	"github.com/10Sirus/orders-api-test/internal/config"
	"github.com/10Sirus/orders-api-test/internal/storage/postgres"
	"github.com/10Sirus/orders-api-test/internal/telemetry"
	transporthttp "github.com/10Sirus/orders-api-test/internal/transport/http"
	"github.com/10Sirus/orders-api-test/migrations"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := telemetry.NewLogger(os.Stdout)
	cfg := config.FromEnv()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pingWithRetry(startupCtx, pool); err != nil {
		logger.Error("db ping", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, cfg.DatabaseURL); err != nil {
		logger.Error("apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	orderStore := postgres.NewOrderStore(pool)
	idemStore := postgres.NewIdempotencyStore(pool)
	outboxStore := postgres.NewOutboxStore(pool)
	orderSvc := app.NewOrderService(orderStore, idemStore, outboxStore, clock.NewSystem(), cfg.IdempotencyTTL, logger)

	handler := transporthttp.NewRouter(orderSvc, pool, logger, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", slog.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}

// pingWithRetry waits for the database with exponential backoff so the
// service survives starting before its database does.
func pingWithRetry(ctx context.Context, pool *pgxpool.Pool) error {
	op := func() (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(startupTimeout),
	)
	return err
}
