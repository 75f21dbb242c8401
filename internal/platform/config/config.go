package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "givekindly/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr       string
	// AdminToken guards /metrics when set.
	AdminToken string
	JWT        JWTConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Ledger     LedgerConfig
	Log        LogConfig
}

// JWTConfig configures bearer token validation.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// DatabaseConfig selects the Postgres backend. An empty URL keeps the ledger in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig backs the idempotency store. An empty URL falls back to memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit outbox relay. No brokers disables the relay.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
	RelayBatch    int
}

// EmptyWithdrawalPolicy decides what a withdrawal of a zero balance does.
type EmptyWithdrawalPolicy string

const (
	EmptyWithdrawalNoop  EmptyWithdrawalPolicy = "noop"
	EmptyWithdrawalError EmptyWithdrawalPolicy = "error"
)

// LedgerConfig tunes the ledger service.
type LedgerConfig struct {
	TxTimeout       time.Duration
	EmptyWithdrawal EmptyWithdrawalPolicy
	IdempotencyTTL  time.Duration
}

// LogConfig selects slog handler and level.
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:       envOr("GIVEKINDLY_ADDR", ":8080"),
		AdminToken: os.Getenv("ADMIN_API_TOKEN"),
		JWT: JWTConfig{
			// Use a default for development - should be overridden in production
			SigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envOr("JWT_ISSUER", "givekindly"),
			Audience:   envOr("JWT_AUDIENCE", "givekindly-ledger"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    envOr("KAFKA_AUDIT_TOPIC", "givekindly.audit"),
			RelayInterval: time.Second,
			RelayBatch:    100,
		},
		Ledger: LedgerConfig{
			TxTimeout:       5 * time.Second,
			EmptyWithdrawal: EmptyWithdrawalPolicy(envOr("ESCROW_EMPTY_WITHDRAWAL", string(EmptyWithdrawalNoop))),
			IdempotencyTTL:  24 * time.Hour,
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}

	var err error
	if cfg.Ledger.TxTimeout, err = durationEnv("LEDGER_TX_TIMEOUT", cfg.Ledger.TxTimeout); err != nil {
		return Server{}, err
	}
	if cfg.Ledger.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.Ledger.IdempotencyTTL); err != nil {
		return Server{}, err
	}
	if cfg.Database.MaxOpenConns, err = intEnv("DATABASE_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = intEnv("REDIS_POOL_SIZE", cfg.Redis.PoolSize); err != nil {
		return Server{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Server) Validate() error {
	switch c.Ledger.EmptyWithdrawal {
	case EmptyWithdrawalNoop, EmptyWithdrawalError:
	default:
		return fmt.Errorf("ESCROW_EMPTY_WITHDRAWAL must be %q or %q, got %q",
			EmptyWithdrawalNoop, EmptyWithdrawalError, c.Ledger.EmptyWithdrawal)
	}
	if c.Ledger.TxTimeout <= 0 {
		return fmt.Errorf("LEDGER_TX_TIMEOUT must be positive")
	}
	if c.JWT.SigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required")
	}
	if len(c.Kafka.Brokers) > 0 && c.Database.URL == "" {
		return fmt.Errorf("KAFKA_BROKERS requires DATABASE_URL: the relay drains the postgres outbox")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(raw, ","))
}
