// Command reindex rebuilds the product search index from the catalog
// database. It pages through every live product, reindexes each document
// and purges the cached search results.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache"
	cacheredis "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache/redis"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/config"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/event"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/repository/postgres"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search/elasticsearch"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/service"
	storagememory "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/storage/memory"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/database"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("reindex failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("catalog-reindex", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	esClient, err := elasticsearch.New(cfg.ElasticsearchURL, log)
	if err != nil {
		return fmt.Errorf("init elasticsearch client: %w", err)
	}

	repo := postgres.NewProductRepository(pool)
	syncer := search.NewSyncer(esClient, cfg.ElasticsearchIndex, log)
	productCache := cache.New(cacheredis.New(redisClient), cfg.CacheTTL(), log)
	producer := event.NewProducer(cfg.KafkaBrokers, log)
	defer func() { _ = producer.Close() }()

	svc := service.NewCatalogService(
		repo, esClient, syncer, productCache, producer, storagememory.New(cfg.ImageBaseURL),
		cfg.SearchCacheMaxPage, log,
	)

	start := time.Now()
	indexed, err := svc.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("reindex products: %w", err)
	}

	log.Info("reindex complete",
		slog.Int("indexed", indexed),
		slog.String("index", syncer.Index()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
