package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "REDIS_ADDR", "OTEL_HOST", "LISTEN_ADDR", "TLS_CERT", "TLS_KEY", "LOG_LEVEL", "CART_REMOVAL_DELAY", "OTEL_SAMPLE_PROBABILITY"} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cart.RemovalDelay != time.Second {
		t.Errorf("expected 1s removal delay, got %v", cfg.Cart.RemovalDelay)
	}
	if cfg.Session.CookieName != "session_id" {
		t.Errorf("expected session_id cookie, got %s", cfg.Session.CookieName)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.TLS() {
		t.Error("default config should not use TLS")
	}
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "storefront.yaml")

	cfg := Default()
	cfg.Redis.Addr = "localhost:6379"
	cfg.Cart.RemovalDelay = 250 * time.Millisecond
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Redis.Addr != "localhost:6379" {
		t.Errorf("expected redis addr, got %q", loaded.Redis.Addr)
	}
	if loaded.Cart.RemovalDelay != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", loaded.Cart.RemovalDelay)
	}
}

func TestLoadDurationString(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	if err := os.WriteFile(path, []byte("cart:\n  removal_delay: 2s\nsession:\n  idle_ttl: 1h\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cart.RemovalDelay != 2*time.Second || cfg.Session.IdleTTL != time.Hour {
		t.Fatalf("unexpected durations: %v %v", cfg.Cart.RemovalDelay, cfg.Session.IdleTTL)
	}
	if cfg.Session.KeyPrefix != "storefront" {
		t.Fatalf("defaults should survive partial file, got prefix %q", cfg.Session.KeyPrefix)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CART_REMOVAL_DELAY", "10ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://localhost/shop" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Cart.RemovalDelay != 10*time.Millisecond {
		t.Fatalf("expected 10ms, got %v", cfg.Cart.RemovalDelay)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.HTTP.CertFile = "server.crt"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for cert without key")
	}

	cfg = Default()
	cfg.Tracing.Probability = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for probability > 1")
	}

	cfg = Default()
	cfg.Cart.RemovalDelay = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero removal delay")
	}
}

func TestLoadRejectsZeroRemovalDelay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	if err := os.WriteFile(path, []byte("cart:\n  removal_delay: 0s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected zero removal delay to be rejected")
	}
}
