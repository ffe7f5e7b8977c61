package mcp

import (
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/internal/httpapi"
	"github.com/honeycarbs/jobsearch/internal/mcp/tools"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// Resources are the services shared by the MCP tools and the REST API
type Resources struct {
	JobService   job.Service
	SavedService saved.Service

	// Sheets is nil when no credentials are configured
	Sheets tools.SheetsWriter

	MetricsHandler http.Handler
	Checks         []httpapi.ReadinessCheck
}

type ToolRegistry struct {
	logger *logging.Logger
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

// RegisterAll registers every tool whose backing service is available
func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res Resources) {
	tools.Register(server, r.logger,
		tools.WithJobSearch(res.JobService),
		tools.WithJobDetail(res.JobService),
		tools.WithSaveJob(res.JobService, res.SavedService),
		tools.WithListSavedJobs(res.SavedService),
		tools.WithRemoveSavedJob(res.SavedService),
		tools.WithSheetsExport(res.Sheets, res.JobService),
	)
}
