//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/jobsearch/internal/config"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// InitializeResources connects every configured backend and builds the
// services. The returned cleanup closes the backends.
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Infrastructure
		provideMetrics,
		providePostgres,
		provideRedis,
		provideNeo4j,
		provideSerpAPIClient,
		provideSheets,

		// Storage
		provideRegistry,
		provideResultCache,
		provideArchive,
		provideSavedRepository,

		// Services
		provideJobProvider,
		provideJobService,
		saved.NewService,

		provideReadinessChecks,
		newResources,
	)

	return nil, nil, nil
}
