package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "i9score/pkg/domain-errors"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "ADDR", "I9_STORE", "I9_MATCH_THRESHOLD", "I9_WORKERS", "KAFKA_BROKERS", "I9_AUDIT_BUFFER", "I9_REPORT_TTL", "I9_RATE_LIMIT", "I9_RATE_WINDOW", "KAFKA_PRODUCE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.InDelta(t, 0.6, cfg.Scoring.MatchThreshold, 1e-9)
	assert.Equal(t, 4, cfg.Scoring.Workers)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Kafka.ProduceTimeout)
	assert.Zero(t, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("I9_MATCH_THRESHOLD", "0.75")
	t.Setenv("I9_WORKERS", "16")
	t.Setenv("I9_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("I9_REPORT_TTL", "24h")
	t.Setenv("I9_RATE_LIMIT", "120")
	t.Setenv("I9_RATE_WINDOW", "30s")
	t.Setenv("KAFKA_PRODUCE_TIMEOUT", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.InDelta(t, 0.75, cfg.Scoring.MatchThreshold, 1e-9)
	assert.Equal(t, 16, cfg.Scoring.Workers)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Kafka.ProduceTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Store.ReportTTL)
	assert.Equal(t, RateLimit{Requests: 120, Window: 30 * time.Second}, cfg.RateLimit)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("I9_WORKERS", "many")
	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Scoring: Scoring{MatchThreshold: 0.6, Workers: 1},
			Store:   Store{Backend: StoreMemory},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold zero", func(c *Config) { c.Scoring.MatchThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.Scoring.MatchThreshold = 1.01 }},
		{"no workers", func(c *Config) { c.Scoring.Workers = 0 }},
		{"negative audit buffer", func(c *Config) { c.Audit.Buffer = -1 }},
		{"redis without url", func(c *Config) { c.Store.Backend = StoreRedis }},
		{"postgres without url", func(c *Config) { c.Store.Backend = StorePostgres }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }},
		{"negative rate limit", func(c *Config) { c.RateLimit.Requests = -1 }},
		{"rate limit without window", func(c *Config) { c.RateLimit = RateLimit{Requests: 10} }},
		{"brokers without topic", func(c *Config) { c.Kafka.Brokers = []string{"k:9092"} }},
		{"brokers without produce timeout", func(c *Config) {
			c.Kafka = KafkaConfig{Brokers: []string{"k:9092"}, AuditTopic: "audit"}
		}},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
