package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// RateLimitRPS is the sustained per-client request rate; 0 disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// StoreConfig selects and configures the entity store backend.
type StoreConfig struct {
	Backend        string // memory | postgres | sqlite
	DatabaseURL    string
	SQLitePath     string
	TxTimeout      time.Duration
	MaxConns       int32
	MigrateOnStart bool
}

// IdempotencyConfig selects where idempotency records live.
type IdempotencyConfig struct {
	Backend  string // memory | postgres | redis
	RedisURL string
	TTL      time.Duration
}

// EventsConfig selects where domain events are published.
type EventsConfig struct {
	Backend      string // log | kafka
	KafkaBrokers []string
	KafkaTopic   string
}

// LogConfig configures structured logging.
type LogConfig struct {
	Env    string
	Level  string
	Format string
}

// TracingConfig configures OTLP export.
type TracingConfig struct {
	Endpoint string
}

func LoadServerConfigFromEnv() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:              getenv("PORT", "8080"),
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		RateLimitRPS:      50,
		RateLimitBurst:    100,
	}

	var err error
	if cfg.ReadHeaderTimeout, err = durationFromEnv("READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout); err != nil {
		return ServerConfig{}, err
	}
	if cfg.ShutdownTimeout, err = durationFromEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return ServerConfig{}, err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return ServerConfig{}, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number: %q", v)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return ServerConfig{}, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer: %q", v)
		}
		cfg.RateLimitBurst = n
	}
	return cfg, nil
}

func LoadStoreConfigFromEnv() (StoreConfig, error) {
	cfg := StoreConfig{
		Backend:        strings.ToLower(getenv("STORAGE_BACKEND", "memory")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getenv("SQLITE_PATH", "booking.db"),
		TxTimeout:      5 * time.Second,
		MaxConns:       10,
		MigrateOnStart: true,
	}

	var err error
	if cfg.TxTimeout, err = durationFromEnv("STORE_TX_TIMEOUT", cfg.TxTimeout); err != nil {
		return StoreConfig{}, err
	}
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return StoreConfig{}, fmt.Errorf("DB_MAX_CONNS must be a positive integer: %q", v)
		}
		cfg.MaxConns = int32(n)
	}
	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return StoreConfig{}, fmt.Errorf("MIGRATE_ON_START must be a boolean: %w", err)
		}
		cfg.MigrateOnStart = b
	}

	switch cfg.Backend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return StoreConfig{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return StoreConfig{}, fmt.Errorf("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return StoreConfig{}, fmt.Errorf("unknown STORAGE_BACKEND %q (expected memory|postgres|sqlite)", cfg.Backend)
	}
	return cfg, nil
}

func LoadIdempotencyConfigFromEnv() (IdempotencyConfig, error) {
	cfg := IdempotencyConfig{
		Backend:  strings.ToLower(getenv("IDEMPOTENCY_BACKEND", "memory")),
		RedisURL: os.Getenv("REDIS_URL"),
		TTL:      24 * time.Hour,
	}
	var err error
	if cfg.TTL, err = durationFromEnv("IDEMPOTENCY_TTL", cfg.TTL); err != nil {
		return IdempotencyConfig{}, err
	}
	switch cfg.Backend {
	case "memory", "postgres":
	case "redis":
		if cfg.RedisURL == "" {
			return IdempotencyConfig{}, fmt.Errorf("REDIS_URL is required when IDEMPOTENCY_BACKEND=redis")
		}
	default:
		return IdempotencyConfig{}, fmt.Errorf("unknown IDEMPOTENCY_BACKEND %q (expected memory|postgres|redis)", cfg.Backend)
	}
	return cfg, nil
}

func LoadEventsConfigFromEnv() (EventsConfig, error) {
	cfg := EventsConfig{
		Backend:    strings.ToLower(getenv("EVENTS_BACKEND", "log")),
		KafkaTopic: getenv("KAFKA_TOPIC", "booking.events"),
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	switch cfg.Backend {
	case "log":
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return EventsConfig{}, fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	default:
		return EventsConfig{}, fmt.Errorf("unknown EVENTS_BACKEND %q (expected log|kafka)", cfg.Backend)
	}
	return cfg, nil
}

func LoadLogConfigFromEnv() LogConfig {
	return LogConfig{
		Env:    getenv("APP_ENV", "dev"),
		Level:  getenv("LOG_LEVEL", "info"),
		Format: getenv("LOG_FORMAT", "json"),
	}
}

func LoadTracingConfigFromEnv() TracingConfig {
	return TracingConfig{Endpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationFromEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 5s): %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", k, v)
	}
	return d, nil
}
