package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	dErrors "i9score/pkg/domain-errors"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the full process configuration. CLI flags override these values.
type Config struct {
	Env      string
	LogLevel string
	Addr     string
	Scoring  Scoring
	Store    Store
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Audit    Audit
	// RateLimit caps the /decision API per client IP. Zero disables it.
	RateLimit RateLimit
}

// Scoring tunes the engine.
type Scoring struct {
	MatchThreshold float64
	Workers        int
	// TaxonomyPath overrides the embedded taxonomy when set.
	TaxonomyPath string
}

// RateLimit is a sliding-window request cap.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Store selects where reports are persisted.
type Store struct {
	Backend   string
	ReportTTL time.Duration
}

// RedisConfig mirrors the go-redis pool options we override.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PostgresConfig struct {
	URL      string
	MaxConns int32
}

type KafkaConfig struct {
	Brokers        []string
	AuditTopic     string
	ClientID       string
	ProduceTimeout time.Duration
}

// Audit controls the async audit publisher. Zero Buffer means synchronous.
type Audit struct {
	Buffer int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:      getenv("ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		Addr:     getenv("ADDR", ":8080"),
		Scoring: Scoring{
			TaxonomyPath: os.Getenv("I9_TAXONOMY"),
		},
		Store: Store{
			Backend: getenv("I9_STORE", StoreMemory),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: 10,
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "i9score.audit"),
			ClientID:   getenv("KAFKA_CLIENT_ID", "i9score"),
		},
	}

	var err error
	if cfg.Scoring.MatchThreshold, err = floatEnv("I9_MATCH_THRESHOLD", 0.6); err != nil {
		return Config{}, err
	}
	if cfg.Scoring.Workers, err = intEnv("I9_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.Audit.Buffer, err = intEnv("I9_AUDIT_BUFFER", 0); err != nil {
		return Config{}, err
	}
	if cfg.Store.ReportTTL, err = durationEnv("I9_REPORT_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Requests, err = intEnv("I9_RATE_LIMIT", 0); err != nil {
		return Config{}, err
	}
	if cfg.Kafka.ProduceTimeout, err = durationEnv("KAFKA_PRODUCE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = durationEnv("I9_RATE_WINDOW", time.Minute); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules. Call it after flags are applied.
func (c Config) Validate() error {
	if c.Scoring.MatchThreshold <= 0 || c.Scoring.MatchThreshold > 1 {
		return dErrors.New(dErrors.CodeValidation, "match threshold must be in (0, 1]")
	}
	if c.Scoring.Workers < 1 {
		return dErrors.New(dErrors.CodeValidation, "workers must be at least 1")
	}
	if c.Audit.Buffer < 0 {
		return dErrors.New(dErrors.CodeValidation, "audit buffer must not be negative")
	}
	if c.RateLimit.Requests < 0 {
		return dErrors.New(dErrors.CodeValidation, "rate limit must not be negative")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return dErrors.New(dErrors.CodeValidation, "rate limit window must be positive")
	}
	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "DATABASE_URL is required for the postgres store")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown store backend: "+c.Store.Backend)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.AuditTopic == "" {
		return dErrors.New(dErrors.CodeValidation, "KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.ProduceTimeout <= 0 {
		return dErrors.New(dErrors.CodeValidation, "KAFKA_PRODUCE_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the process runs in prod.
func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, key+" must be a number")
	}
	return v, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, key+" must be an integer")
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, key+" must be a duration")
	}
	return v, nil
}
