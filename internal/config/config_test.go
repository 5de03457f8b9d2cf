package config

import (
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults apply when nothing is set", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("DATABASE_URL", "")
		t.Setenv("IDEMPOTENCY_TTL", "")
		t.Setenv("CORS_ORIGINS", "")

		cfg := FromEnv()
		if cfg.Port != "8080" {
			t.Fatalf("expected default port, got %q", cfg.Port)
		}
		if cfg.IdempotencyTTL != time.Hour {
			t.Fatalf("expected default TTL, got %v", cfg.IdempotencyTTL)
		}
		if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
			t.Fatalf("expected wildcard CORS, got %v", cfg.CORSOrigins)
		}
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/orders")
		t.Setenv("IDEMPOTENCY_TTL", "30m")
		t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

		cfg := FromEnv()
		if cfg.Port != "9090" {
			t.Fatalf("expected port override, got %q", cfg.Port)
		}
		if cfg.DatabaseURL != "postgres://u:p@db:5432/orders" {
			t.Fatalf("expected DSN override, got %q", cfg.DatabaseURL)
		}
		if cfg.IdempotencyTTL != 30*time.Minute {
			t.Fatalf("expected 30m TTL, got %v", cfg.IdempotencyTTL)
		}
		want := []string{"https://a.example.com", "https://b.example.com"}
		if len(cfg.CORSOrigins) != len(want) {
			t.Fatalf("expected %v, got %v", want, cfg.CORSOrigins)
		}
		for i := range want {
			if cfg.CORSOrigins[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, cfg.CORSOrigins)
			}
		}
	})

	t.Run("invalid TTL keeps the default", func(t *testing.T) {
		t.Setenv("IDEMPOTENCY_TTL", "soon")
		if cfg := FromEnv(); cfg.IdempotencyTTL != time.Hour {
			t.Fatalf("expected default TTL, got %v", cfg.IdempotencyTTL)
		}

		t.Setenv("IDEMPOTENCY_TTL", "-5m")
		if cfg := FromEnv(); cfg.IdempotencyTTL != time.Hour {
			t.Fatalf("expected default TTL, got %v", cfg.IdempotencyTTL)
		}
	})
}
