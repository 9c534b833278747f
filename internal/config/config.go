package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix                    = "HEALTHLOG"
	defaultHTTPAddress           = "0.0.0.0:8080"
	defaultDatabasePath          = "healthlog.db"
	defaultLogLevel              = "info"
	defaultLogFormat             = "json"
	defaultRateLimit             = 20.0
	defaultRateBurst             = 40
	defaultBreakerFailures       = 5
	defaultBreakerTimeoutSeconds = 30
	defaultHeartbeatSeconds      = 25
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress       string
	RateLimit         float64
	RateBurst         int
	DatabasePath      string
	LogLevel          string
	LogFormat         string
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
	HeartbeatInterval time.Duration
	SymptomKinds      map[string]string
	MedicationKinds   map[string]string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.rate_limit", defaultRateLimit)
	configViper.SetDefault("http.rate_burst", defaultRateBurst)
	configViper.SetDefault("http.heartbeat_seconds", defaultHeartbeatSeconds)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("store.breaker_failures", defaultBreakerFailures)
	configViper.SetDefault("store.breaker_timeout_seconds", defaultBreakerTimeoutSeconds)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:       configViper.GetString("http.address"),
		RateLimit:         configViper.GetFloat64("http.rate_limit"),
		RateBurst:         configViper.GetInt("http.rate_burst"),
		DatabasePath:      configViper.GetString("database.path"),
		LogLevel:          configViper.GetString("log.level"),
		LogFormat:         configViper.GetString("log.format"),
		BreakerFailures:   uint32(configViper.GetInt("store.breaker_failures")),
		BreakerTimeout:    time.Duration(configViper.GetInt("store.breaker_timeout_seconds")) * time.Second,
		HeartbeatInterval: time.Duration(configViper.GetInt("http.heartbeat_seconds")) * time.Second,
		SymptomKinds:      configViper.GetStringMapString("history.symptom_kinds"),
		MedicationKinds:   configViper.GetStringMapString("history.medication_kinds"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return fmt.Errorf("http.rate_burst must be positive when http.rate_limit is set")
	}
	if c.BreakerFailures == 0 {
		return fmt.Errorf("store.breaker_failures must be positive")
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("store.breaker_timeout_seconds must be positive")
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("http.heartbeat_seconds must be positive")
	}
	return nil
}
