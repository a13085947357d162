package config

import (
	"testing"
	"time"
)

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "SEED_PATH",
		"TRAVEL_PROVIDER", "TOMTOM_API_KEY", "ORS_API_KEY",
		"CACHE_BACKEND", "REDIS_URL", "CACHE_TTL",
		"MATRIX_CONCURRENCY", "SEARCH_MAX_EXPANSIONS", "SEARCH_MAX_NODES", "SEARCH_TIMEOUT",
		"DEFAULT_ALPHA", "DEFAULT_BETA", "START_LON", "START_LAT", "OVERPASS_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != DriverSQLite || cfg.TravelProvider != ProviderStraightLine {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultAlpha != 0.3 || cfg.DefaultBeta != 0.7 {
		t.Fatalf("weights = %v/%v, want 0.3/0.7", cfg.DefaultAlpha, cfg.DefaultBeta)
	}
	if cfg.MatrixConcurrency != 8 || cfg.SearchMaxExpansions != 50000 || cfg.SearchMaxNodes != 250000 || cfg.SearchTimeout != 5*time.Second {
		t.Fatalf("unexpected search defaults: %+v", cfg)
	}
	if cfg.Start != nil {
		t.Fatalf("expected no default start, got %+v", cfg.Start)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/atms")
	t.Setenv("TRAVEL_PROVIDER", "tomtom")
	t.Setenv("TOMTOM_API_KEY", "key")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("DEFAULT_ALPHA", "0.5")
	t.Setenv("START_LON", "106.8")
	t.Setenv("START_LAT", "-6.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != DriverPostgres || cfg.TravelProvider != ProviderTomTom || cfg.CacheBackend != CacheRedis {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CacheTTL != 90*time.Minute || cfg.DefaultAlpha != 0.5 {
		t.Fatalf("unexpected values: ttl=%v alpha=%v", cfg.CacheTTL, cfg.DefaultAlpha)
	}
	if cfg.Start == nil || cfg.Start.Lon != 106.8 || cfg.Start.Lat != -6.2 {
		t.Fatalf("start = %+v", cfg.Start)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"malformed int":      {"MATRIX_CONCURRENCY": "eight"},
		"malformed duration": {"SEARCH_TIMEOUT": "5 seconds"},
		"weight range":       {"DEFAULT_BETA": "1.5"},
		"zero node cap":      {"SEARCH_MAX_NODES": "0"},
		"half start":         {"START_LON": "106.8"},
		"start range":        {"START_LON": "200", "START_LAT": "0"},
		"unknown driver":     {"DB_DRIVER": "mysql"},
		"postgres no url":    {"DB_DRIVER": "postgres"},
		"ors no key":         {"TRAVEL_PROVIDER": "ors"},
		"unknown cache":      {"CACHE_BACKEND": "memcached"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("ATM_CONFIG_TEST", "  value ")
	if got := Get("ATM_CONFIG_TEST", "x"); got != "value" {
		t.Fatalf("Get = %q, want value", got)
	}
	t.Setenv("ATM_CONFIG_TEST", "")
	if got := Get("ATM_CONFIG_TEST", "x"); got != "x" {
		t.Fatalf("Get = %q, want fallback", got)
	}
}
