package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.InactivityThreshold() != 3*time.Minute {
		t.Fatalf("unexpected inactivity threshold: %v", cfg.InactivityThreshold())
	}
	if !cfg.UWAlertsEnabled {
		t.Fatalf("expected alerts enabled by default")
	}
	if cfg.GooglePlacesAPIKey != "" {
		t.Fatalf("expected places key to default empty")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("INACTIVITY_MINUTES", "5")
	t.Setenv("UW_ALERTS_ENABLED", "false")
	t.Setenv("SHARE_BASE_URL", "https://example.test")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.InactivityThreshold() != 5*time.Minute {
		t.Fatalf("expected override inactivity")
	}
	if cfg.UWAlertsEnabled {
		t.Fatalf("expected alerts disabled")
	}
	if cfg.ShareBaseURL != "https://example.test" {
		t.Fatalf("expected override share base url")
	}
}

func TestInactivityFallback(t *testing.T) {
	t.Setenv("INACTIVITY_MINUTES", "0")
	cfg := Load()
	if cfg.InactivityMinutes != 3 {
		t.Fatalf("expected fallback to 3 minutes, got %d", cfg.InactivityMinutes)
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " http://a.test , ,http://b.test"}
	if got := cfg.AllowedOrigins(); got != "http://a.test,http://b.test" {
		t.Fatalf("unexpected origins: %q", got)
	}
	if got := (Config{}).AllowedOrigins(); got != "*" {
		t.Fatalf("expected wildcard, got %q", got)
	}
}

func TestParseClientEnv(t *testing.T) {
	var defaults ClientEnv
	if err := ParseEnv(&defaults); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if defaults.APIURL != "http://localhost:8080" || defaults.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", defaults)
	}

	t.Setenv("SAFEWALK_API_URL", "https://api.safewalk.test")
	t.Setenv("SAFEWALK_TOKEN", "abc")
	var cfg ClientEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.APIURL != "https://api.safewalk.test" || cfg.Token != "abc" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}

	if err := ParseEnv(cfg); err == nil {
		t.Fatalf("expected error for non-pointer target")
	}
}
