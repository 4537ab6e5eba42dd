package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/database"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/health"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/tracing"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache"
	cacheredis "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache/redis"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/config"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/event"
	handler "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/handler/http"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/repository/postgres"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search/elasticsearch"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/service"
	storagememory "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/storage/memory"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/migrations"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *event.Producer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "catalog-service",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool and run migrations.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Initialize Redis for the read-through cache.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	productCache := cache.New(cacheredis.New(redisClient), cfg.CacheTTL(), logger)

	// Initialize the Elasticsearch client and index schema. A missing index
	// backend degrades search but must not block catalog writes, so schema
	// failures are logged and startup continues.
	esClient, err := elasticsearch.New(cfg.ElasticsearchURL, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init elasticsearch client: %w", err)
	}
	syncer := search.NewSyncer(esClient, cfg.ElasticsearchIndex, logger)
	if err := syncer.EnsureSchema(ctx); err != nil {
		logger.Warn("search index schema not ready, continuing degraded",
			slog.String("index", cfg.ElasticsearchIndex),
			slog.String("error", err.Error()),
		)
	}

	// Initialize Kafka producer.
	producer := event.NewProducer(cfg.KafkaBrokers, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	repo := postgres.NewProductRepository(pool)
	imageStore := storagememory.New(cfg.ImageBaseURL)
	catalogService := service.NewCatalogService(
		repo, esClient, syncer, productCache, producer, imageStore,
		cfg.SearchCacheMaxPage, logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("elasticsearch", esClient.Ping)
	healthHandler.Register("kafka", producer.Ping)

	// HTTP router.
	router := handler.NewRouter(catalogService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
