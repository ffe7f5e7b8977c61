package main

import (
	"context"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/jobsearch/internal/config"
	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/internal/mcp"
	"github.com/honeycarbs/jobsearch/pkg/logging"
	"github.com/honeycarbs/jobsearch/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	res, cleanup, err := mcp.InitializeResources(initCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}

	srv, err := mcp.NewServer(logger, cfg, *res)
	if err != nil {
		cleanup()
		logger.Error("failed to build server", "err", err)
		os.Exit(1)
	}

	warmer, err := newWarmer(cfg, res.JobService, logger)
	if err != nil {
		cleanup()
		logger.Error("failed to schedule cache warming", "err", err)
		os.Exit(1)
	}

	// order matters: stop taking requests, drain cache writes, then close backends
	targets := []shutdown.Stoppable{srv, shutdown.StopFunc(res.JobService.Flush)}
	if warmer != nil {
		warmer.Start()
		targets = append(targets, warmer)
	}
	targets = append(targets, shutdown.StopFunc(func(context.Context) error {
		cleanup()
		return nil
	}))

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		shutdown.Graceful(
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			15*time.Second,
			logger,
			targets...,
		)
	}()

	logger.Info("server initialized and starting", "addr", net.JoinHostPort(cfg.Host, cfg.Port))

	if err := srv.Run(); err != nil {
		logger.Error("HTTP server exited with error", "err", err)
		os.Exit(1)
	}
	<-stopped
	logger.Info("server stopped")
}

// newWarmer returns nil when no warm schedule is configured. Warm runs accept
// entries up to half the cache TTL old so popular queries are refreshed
// before callers would see a miss.
func newWarmer(cfg config.Config, svc job.Service, logger *logging.Logger) (*job.Warmer, error) {
	if cfg.Warm.Schedule == "" || len(cfg.Warm.Queries) == 0 {
		return nil, nil
	}

	queries := make([]domain.SearchFilters, 0, len(cfg.Warm.Queries))
	for _, q := range cfg.Warm.Queries {
		queries = append(queries, q.Filters())
	}
	return job.NewWarmer(svc, cfg.Warm.Schedule, queries, cfg.Cache.TTL/2, logger)
}
