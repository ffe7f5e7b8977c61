package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
)

// JobSearchParams defines the arguments for the job_search tool
type JobSearchParams struct {
	Query          string   `json:"query" jsonschema:"Free-text job search query"`
	Location       string   `json:"location,omitempty" jsonschema:"Location filter; blank or remote searches the default location"`
	Page           int      `json:"page,omitempty" jsonschema:"1-based result page, defaults to 1"`
	EmploymentType string   `json:"employment_type,omitempty" jsonschema:"full_time or internship"`
	Roles          []string `json:"roles,omitempty" jsonschema:"Role keywords appended to the query"`
	Seniority      []string `json:"seniority,omitempty" jsonschema:"Any of entry, mid, senior, lead"`
}

func (p JobSearchParams) filters() domain.SearchFilters {
	page := p.Page
	if page == 0 {
		page = 1
	}
	return domain.SearchFilters{
		Query:          p.Query,
		Location:       p.Location,
		Page:           page,
		EmploymentType: p.EmploymentType,
		Roles:          p.Roles,
		Seniority:      p.Seniority,
	}
}

// JobDetailParams defines the arguments for the job_detail tool
type JobDetailParams struct {
	JobID string `json:"job_id" jsonschema:"Opaque job id returned by job_search"`
}

// WithJobSearch registers the job_search tool
func WithJobSearch(svc job.Service) Option {
	if svc == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_search",
			Description: "Search job listings by query, location and filters; results are cached",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *JobSearchParams) (*sdkmcp.CallToolResult, any, error) {
			resp, err := svc.Search(ctx, params.filters())
			if err != nil {
				reg.logger.Warn("job_search failed", "err", err, "query", params.Query)
				return toolError(err)
			}
			return textResult(summarizeSearch(resp)), resp, nil
		})
	}
}

// WithJobDetail registers the job_detail tool
func WithJobDetail(svc job.Service) Option {
	if svc == nil {
		return nil
	}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_detail",
			Description: "Fetch a single job listing by id; exact=false marks a best-effort match",
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *JobDetailParams) (*sdkmcp.CallToolResult, any, error) {
			result, err := svc.Detail(ctx, params.JobID)
			if err != nil {
				return toolError(err)
			}

			msg := describeListing(result.Job)
			if !result.Exact {
				msg = "approximate match, may not be the requested job\n" + msg
			}
			return textResult(msg), result, nil
		})
	}
}

func summarizeSearch(resp domain.SearchResponse) string {
	var b strings.Builder
	source := "live"
	if resp.Cached {
		source = "cached"
	}
	fmt.Fprintf(&b, "%d jobs for %q in %s (page %d, %s)", len(resp.Jobs), resp.Query, resp.Location, resp.Page, source)
	for _, j := range resp.Jobs {
		b.WriteString("\n- ")
		b.WriteString(oneLine(j))
	}
	return b.String()
}

func oneLine(j domain.JobListing) string {
	s := j.Title
	if j.Company != "" {
		s += " at " + j.Company
	}
	if j.Location != "" {
		s += " (" + j.Location + ")"
	}
	return s + " [" + j.ExternalID + "]"
}

func describeListing(j domain.JobListing) string {
	var b strings.Builder
	b.WriteString(oneLine(j))
	if j.PostedAt != "" {
		fmt.Fprintf(&b, "\nposted: %s", j.PostedAt)
	}
	if j.Salary != "" {
		fmt.Fprintf(&b, "\nsalary: %s", j.Salary)
	}
	if link := applyLink(j); link != "" {
		fmt.Fprintf(&b, "\napply: %s", link)
	}
	if j.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(j.Description)
	}
	return b.String()
}

// applyLink picks the first apply option, falling back to the share link
func applyLink(j domain.JobListing) string {
	for _, opt := range j.ApplyOptions {
		if opt.Link != "" {
			return opt.Link
		}
	}
	return j.ShareLink
}
