package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/honeycarbs/jobsearch/internal/config"
	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
	serpapiProvider "github.com/honeycarbs/jobsearch/internal/domain/job/providers/serpapi"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/internal/httpapi"
	"github.com/honeycarbs/jobsearch/internal/mcp/tools"
	"github.com/honeycarbs/jobsearch/internal/registry"
	"github.com/honeycarbs/jobsearch/internal/storage/memory"
	neo4jstore "github.com/honeycarbs/jobsearch/internal/storage/neo4j"
	pgstore "github.com/honeycarbs/jobsearch/internal/storage/postgres"
	redisstore "github.com/honeycarbs/jobsearch/internal/storage/redis"
	"github.com/honeycarbs/jobsearch/internal/telemetry"
	"github.com/honeycarbs/jobsearch/pkg/logging"
	n4j "github.com/honeycarbs/jobsearch/pkg/neo4j"
	"github.com/honeycarbs/jobsearch/pkg/postgres"
	"github.com/honeycarbs/jobsearch/pkg/redis"
	"github.com/honeycarbs/jobsearch/pkg/serpapi"
	"github.com/honeycarbs/jobsearch/pkg/sheets"
)

// Providers used by the wire injector. Optional backends return nil when
// they are not configured and callers fall back to in-memory storage.

type metricsBundle struct {
	metrics *telemetry.Metrics
	handler http.Handler
}

func provideMetrics(logger *logging.Logger) (metricsBundle, func(), error) {
	provider, handler, err := telemetry.NewPrometheusProvider()
	if err != nil {
		return metricsBundle{}, nil, err
	}
	metrics, err := telemetry.NewMetrics(telemetry.NewMeter(provider))
	if err != nil {
		return metricsBundle{}, nil, err
	}

	cleanup := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("meter provider shutdown failed", "err", err)
		}
	}
	return metricsBundle{metrics: metrics, handler: handler}, cleanup, nil
}

func provideSerpAPIClient(cfg config.Config) (*serpapi.Client, error) {
	client, err := serpapi.NewClient(serpapi.Config{
		APIKey:  cfg.SerpAPI.APIKey,
		BaseURL: cfg.SerpAPI.BaseURL,
		Timeout: cfg.SerpAPI.Timeout,
	})
	if err != nil {
		if errors.Is(err, serpapi.ErrMissingAPIKey) {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		return nil, err
	}
	return client, nil
}

func provideRegistry(cfg config.Config) (*registry.Registry, error) {
	return registry.New(cfg.Cache.RegistryCapacity)
}

func provideJobProvider(client *serpapi.Client, reg *registry.Registry, logger *logging.Logger, m metricsBundle) (job.Provider, error) {
	return serpapiProvider.NewProvider(client, reg, logger, m.metrics)
}

func providePostgres(ctx context.Context, cfg config.Config, logger *logging.Logger) (*pgxpool.Pool, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, search results are cached in memory only")
		return nil, func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("postgres result cache connected")
	return pool, pool.Close, nil
}

func provideRedis(ctx context.Context, cfg config.Config, logger *logging.Logger) (*goredis.Client, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}

	rdb, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("redis hot cache connected")
	return rdb, func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close failed", "err", err)
		}
	}, nil
}

func provideNeo4j(ctx context.Context, cfg config.Config, logger *logging.Logger) (*n4j.Client, func(), error) {
	if cfg.Neo4j.URI == "" {
		logger.Warn("NEO4J_URI not set, saved jobs are kept in memory and the listing archive is disabled")
		return nil, func() {}, nil
	}

	client, err := n4j.NewClient(ctx, n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("neo4j connected")
	return client, func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("neo4j close failed", "err", err)
		}
	}, nil
}

// provideResultCache picks Postgres (or memory) as the durable tier and puts
// Redis in front of it when configured
func provideResultCache(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, rdb *goredis.Client, logger *logging.Logger) (job.ResultCache, error) {
	var cold job.ResultCache = memory.NewSearchCache(nil)
	if pool != nil {
		pg, err := pgstore.NewSearchCache(pool, nil)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		cold = pg
	}

	if rdb == nil {
		return cold, nil
	}
	return redisstore.NewTieredCache(rdb, cold, cfg.Cache.HotMaxAge, nil, logger)
}

// provideArchive returns a nil interface, not a typed nil, when Neo4j is off
func provideArchive(client *n4j.Client) job.ListingArchive {
	if client == nil {
		return nil
	}
	return neo4jstore.NewListingArchive(client)
}

func provideSavedRepository(client *n4j.Client) saved.Repository {
	if client == nil {
		return memory.NewSavedJobs(nil)
	}
	return neo4jstore.NewSavedJobRepository(client)
}

func provideJobService(
	cfg config.Config,
	provider job.Provider,
	cache job.ResultCache,
	reg *registry.Registry,
	archive job.ListingArchive,
	logger *logging.Logger,
	m metricsBundle,
) (job.Service, error) {
	return job.NewService(
		job.WithProvider(provider),
		job.WithCache(cache),
		job.WithRegistry(reg),
		job.WithArchive(archive),
		job.WithCacheTTL(cfg.Cache.TTL),
		job.WithLogger(logger),
		job.WithMetrics(m.metrics),
	)
}

func provideSheets(ctx context.Context, cfg config.Config, logger *logging.Logger) (tools.SheetsWriter, error) {
	if cfg.SheetsCredentialsPath == "" {
		logger.Warn("GOOGLE_SHEETS_CREDENTIALS_PATH not set, sheets_export is disabled")
		return nil, nil
	}

	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.SheetsCredentialsPath})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideReadinessChecks(pool *pgxpool.Pool, rdb *goredis.Client, neo *n4j.Client) []httpapi.ReadinessCheck {
	var checks []httpapi.ReadinessCheck
	if pool != nil {
		checks = append(checks, httpapi.ReadinessCheck{Name: "postgres", Ping: pool.Ping})
	}
	if rdb != nil {
		checks = append(checks, httpapi.ReadinessCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if neo != nil {
		checks = append(checks, httpapi.ReadinessCheck{Name: "neo4j", Ping: neo.Ping})
	}
	return checks
}

func newResources(
	jobService job.Service,
	savedService saved.Service,
	sheetsWriter tools.SheetsWriter,
	m metricsBundle,
	checks []httpapi.ReadinessCheck,
) *Resources {
	return &Resources{
		JobService:     jobService,
		SavedService:   savedService,
		Sheets:         sheetsWriter,
		MetricsHandler: m.handler,
		Checks:         checks,
	}
}
