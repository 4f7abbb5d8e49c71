package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"i9score/internal/decision"
	"i9score/internal/decision/adapters"
	decisionmetrics "i9score/internal/decision/metrics"
	"i9score/internal/decision/store/memory"
	pgstore "i9score/internal/decision/store/postgres"
	redisstore "i9score/internal/decision/store/redis"
	"i9score/internal/platform/config"
	"i9score/internal/platform/logger"
	"i9score/internal/platform/postgres"
	"i9score/internal/platform/ratelimit"
	"i9score/internal/platform/redis"
	"i9score/internal/taxonomy"
	"i9score/pkg/platform/audit"
	"i9score/pkg/platform/audit/publisher"
	"i9score/pkg/platform/audit/publishers/kafka"
	auditmemory "i9score/pkg/platform/audit/store/memory"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	service   *decision.Service
	publisher *publisher.Publisher

	// redisClient is set when the report store runs on Redis; rate limits share it.
	redisClient *redis.Client

	checks  map[string]func(context.Context) error
	closers []func()
}

// loadConfig reads the environment, then applies any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Scoring.MatchThreshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("workers") {
		cfg.Scoring.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("taxonomy") {
		cfg.Scoring.TaxonomyPath, _ = flags.GetString("taxonomy")
	}
	if flags.Changed("store") {
		cfg.Store.Backend, _ = flags.GetString("store")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, cfg.Validate()
}

// addConfigFlags registers the flags that override environment settings.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("threshold", decision.DefaultThreshold, "Field resolver match threshold (overrides I9_MATCH_THRESHOLD)")
	cmd.Flags().Int("workers", decision.DefaultWorkers, "Concurrent documents per batch (overrides I9_WORKERS)")
	cmd.Flags().String("taxonomy", "", "Document taxonomy JSON (overrides I9_TAXONOMY)")
	cmd.Flags().String("store", config.StoreMemory, "Report store: memory, redis or postgres (overrides I9_STORE)")
	cmd.Flags().String("log-level", "info", "Log level (overrides LOG_LEVEL)")
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger.New(cfg.Env, cfg.LogLevel),
		registry: prometheus.NewRegistry(),
		checks:   map[string]func(context.Context) error{},
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tax, err := loadTaxonomy(cfg.Scoring.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "taxonomy loaded", "documents", tax.Len(), "path", cfg.Scoring.TaxonomyPath)
	engine, err := decision.NewEngine(adapters.NewTaxonomyAdapter(tax), decision.Config{
		Threshold: cfg.Scoring.MatchThreshold,
	})
	if err != nil {
		return nil, err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	sink, err := a.openAuditSink()
	if err != nil {
		a.Close()
		return nil, err
	}
	var pubOpts []publisher.Option
	pubOpts = append(pubOpts, publisher.WithLogger(a.logger))
	if cfg.Audit.Buffer > 0 {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.Audit.Buffer))
	}
	a.publisher = publisher.NewPublisher(sink, pubOpts...)
	a.closers = append(a.closers, func() { _ = a.publisher.Close() })

	a.service, err = decision.NewService(engine,
		decision.WithLogger(a.logger),
		decision.WithMetrics(decisionmetrics.NewWithRegistry(a.registry)),
		decision.WithStore(store),
		decision.WithAuditor(a.publisher),
		decision.WithWorkers(cfg.Scoring.Workers),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func loadTaxonomy(path string) (*taxonomy.Taxonomy, error) {
	if path == "" {
		return taxonomy.Default()
	}
	return taxonomy.Load(path)
}

func (a *app) openStore(ctx context.Context) (decision.Store, error) {
	switch a.cfg.Store.Backend {
	case config.StoreRedis:
		client, err := redis.New(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("redis store selected but REDIS_URL is empty")
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.checks["redis"] = client.Health
		a.redisClient = client
		return redisstore.New(client.Client, a.cfg.Store.ReportTTL), nil
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, a.cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if pool == nil {
			return nil, errors.New("postgres store selected but DATABASE_URL is empty")
		}
		a.closers = append(a.closers, pool.Close)
		a.checks["postgres"] = pool.Ping
		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return memory.NewInMemoryReportStore(), nil
	}
}

// openAuditSink returns the in-memory audit store, fronted by Kafka when
// brokers are configured. The memory store doubles as the Kafka fallback.
func (a *app) openAuditSink() (audit.Sink, error) {
	local := auditmemory.NewInMemoryStore()
	if len(a.cfg.Kafka.Brokers) == 0 {
		return local, nil
	}
	client, err := kafka.NewClient(a.cfg.Kafka.Brokers, a.cfg.Kafka.ClientID)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	a.checks["kafka"] = client.Ping
	sink, err := kafka.New(client, a.cfg.Kafka.AuditTopic,
		kafka.WithFallback(local),
		kafka.WithLogger(a.logger),
		kafka.WithProduceTimeout(a.cfg.Kafka.ProduceTimeout),
	)
	if err != nil {
		return nil, err
	}
	a.checks["audit_sink"] = sink.Health
	return sink, nil
}

// rateLimitStore shares limits through Redis when it is available.
func (a *app) rateLimitStore() ratelimit.Store {
	if a.redisClient != nil {
		return ratelimit.NewRedisStore(a.redisClient.Client)
	}
	return ratelimit.NewInMemoryStore()
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
