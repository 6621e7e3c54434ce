package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "")
	t.Setenv("LOGIN_LOCKOUT_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreDriverPostgres {
		t.Fatalf("driver = %q", cfg.Store.Driver)
	}
	if cfg.Guard.MaxAttempts != 5 {
		t.Fatalf("max attempts = %d", cfg.Guard.MaxAttempts)
	}
	if cfg.Guard.Lockout() != 15*time.Minute {
		t.Fatalf("lockout = %s", cfg.Guard.Lockout())
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_DB", "one")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for REDIS_DB")
	}
}

func TestGoogleEnabled(t *testing.T) {
	if (OAuthConfig{GoogleClientID: "id"}).GoogleEnabled() {
		t.Fatal("secret missing, should be disabled")
	}
	if !(OAuthConfig{GoogleClientID: "id", GoogleClientSecret: "s"}).GoogleEnabled() {
		t.Fatal("expected enabled")
	}
}
