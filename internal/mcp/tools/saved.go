package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
)

// SaveJobParams defines the arguments for the save_job tool
type SaveJobParams struct {
	UserID string `json:"user_id" jsonschema:"User the bookmark belongs to"`
	JobID  string `json:"job_id" jsonschema:"Opaque job id returned by job_search"`
}

// SavedJobsParams defines the arguments for list_saved_jobs
type SavedJobsParams struct {
	UserID string `json:"user_id" jsonschema:"User whose bookmarks to list"`
}

// SavedJobsResult is the structured output of list_saved_jobs
type SavedJobsResult struct {
	Jobs []domain.SavedJob `json:"jobs"`
}

// WithSaveJob registers save_job. The listing is resolved through jobs so
// the stored snapshot is the full posting rather than whatever the caller
// passed in.
func WithSaveJob(jobs job.Service, svc saved.Service) Option {
	if jobs == nil || svc == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "save_job",
			Description: "Bookmark a job listing for a user",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *SaveJobParams) (*sdkmcp.CallToolResult, any, error) {
			if strings.TrimSpace(params.UserID) == "" {
				return errorResult(fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)), nil, nil
			}

			detail, err := jobs.Detail(ctx, params.JobID)
			if err != nil {
				return toolError(err)
			}
			if !detail.Exact {
				return errorResult(fmt.Errorf("%w: job %s could not be resolved exactly", domain.ErrNotFound, params.JobID)), nil, nil
			}

			entry, err := svc.Save(ctx, params.UserID, detail.Job)
			if err != nil {
				return toolError(err)
			}
			return textResult("saved " + oneLine(entry.Job)), entry, nil
		})
	}
}

// WithListSavedJobs registers list_saved_jobs
func WithListSavedJobs(svc saved.Service) Option {
	if svc == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_saved_jobs",
			Description: "List a user's bookmarked jobs, newest first",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *SavedJobsParams) (*sdkmcp.CallToolResult, any, error) {
			jobs, err := svc.List(ctx, params.UserID)
			if err != nil {
				return toolError(err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%d saved jobs", len(jobs))
			for _, j := range jobs {
				b.WriteString("\n- ")
				b.WriteString(oneLine(j.Job))
			}
			return textResult(b.String()), SavedJobsResult{Jobs: jobs}, nil
		})
	}
}

// WithRemoveSavedJob registers remove_saved_job
func WithRemoveSavedJob(svc saved.Service) Option {
	if svc == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "remove_saved_job",
			Description: "Remove a bookmarked job",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *SaveJobParams) (*sdkmcp.CallToolResult, any, error) {
			if err := svc.Delete(ctx, params.UserID, params.JobID); err != nil {
				return toolError(err)
			}
			return textResult("removed " + params.JobID), nil, nil
		})
	}
}
