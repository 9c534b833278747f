package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != defaultDatabasePath {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.BreakerTimeout != 30*time.Second {
		t.Fatalf("unexpected breaker timeout %s", cfg.BreakerTimeout)
	}
	if cfg.BreakerFailures != defaultBreakerFailures {
		t.Fatalf("unexpected breaker failures %d", cfg.BreakerFailures)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HEALTHLOG_DATABASE_PATH", "/tmp/custom.db")
	t.Setenv("HEALTHLOG_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Fatalf("expected env database path, got %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected env log level, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value any
	}{
		{name: "empty-database-path", key: "database.path", value: " "},
		{name: "negative-rate-limit", key: "http.rate_limit", value: -1},
		{name: "zero-burst", key: "http.rate_burst", value: 0},
		{name: "zero-breaker-failures", key: "store.breaker_failures", value: 0},
		{name: "zero-heartbeat", key: "http.heartbeat_seconds", value: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewViper()
			configViper.Set(testCase.key, testCase.value)
			if _, err := Load(configViper); err == nil {
				t.Fatalf("expected validation error for %s", testCase.key)
			}
		})
	}
}
