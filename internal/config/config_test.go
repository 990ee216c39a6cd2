package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "APP_PORT", "STORE_BACKEND", "FRAUD_SEED", "EVENTS_ENABLED", "MAX_POPULATE", "ADMIN_JWT_SECRET"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendMemory || cfg.Port != "8080" || cfg.Env != "dev" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.FraudSeed != 0 || cfg.EventsEnabled || cfg.MaxPopulate != 1_000_000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("FRAUD_SEED", "18446744073709551615")
	t.Setenv("EVENTS_ENABLED", "yes")
	t.Setenv("REDIS_KEY_PREFIX", "bench:")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendRedis || cfg.Port != "9090" || cfg.RedisPrefix != "bench:" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.FraudSeed != 1<<64-1 || !cfg.EventsEnabled {
		t.Errorf("FraudSeed %d EventsEnabled %v", cfg.FraudSeed, cfg.EventsEnabled)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "etcd"}},
		{"mysql without user", map[string]string{"STORE_BACKEND": "mysql", "DB_USER": "", "DB_NAME": "tickets"}},
		{"mysql without db", map[string]string{"STORE_BACKEND": "mysql", "DB_USER": "root", "DB_NAME": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want clamp to 1", cfg.Capacity)
	}
	if cfg.TTL != 10*time.Second {
		t.Errorf("TTL = %v, want 5 refill intervals", cfg.TTL)
	}

	t.Setenv("RATE_LIMIT_BURST", "15")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "250ms")
	cfg = LoadRateLimitConfig()
	if cfg.Capacity != 15 || cfg.RefillTokens != 1 || cfg.RefillInterval != 250*time.Millisecond {
		t.Errorf("burst/refill overrides not applied: %+v", cfg)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "3m")
	if envBool("X_BOOL", true) {
		t.Error("envBool(off) = true")
	}
	if envBool("X_UNSET_BOOL", true) != true {
		t.Error("envBool default not used")
	}
	if envInt("X_INT", 7) != 7 {
		t.Error("envInt should fall back on parse error")
	}
	if envDur("X_DUR", 0) != 3*time.Minute {
		t.Error("envDur(3m)")
	}
}
