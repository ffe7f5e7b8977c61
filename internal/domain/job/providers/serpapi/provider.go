package serpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/honeycarbs/jobsearch/internal/domain"
	jobdomain "github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/internal/telemetry"
	"github.com/honeycarbs/jobsearch/pkg/logging"
	"github.com/honeycarbs/jobsearch/pkg/serpapi"
)

const providerName = "google_jobs"

// searchClient describes the subset of the SerpAPI client used by the provider.
type searchClient interface {
	Search(ctx context.Context, params serpapi.SearchParams) (*serpapi.SearchResponse, error)
}

// Provider implements job.Provider on top of SerpAPI google_jobs
type Provider struct {
	client   searchClient
	registry jobdomain.Registry
	logger   *logging.Logger
	metrics  *telemetry.Metrics
}

// NewProvider builds a google_jobs provider. A nil client is accepted and
// makes every fetch fail with domain.ErrConfiguration.
func NewProvider(client searchClient, registry jobdomain.Registry, logger *logging.Logger, metrics *telemetry.Metrics) (*Provider, error) {
	if registry == nil {
		return nil, fmt.Errorf("serpapi provider: registry is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{
		client:   client,
		registry: registry,
		logger:   logger.Named("serpapi"),
		metrics:  metrics,
	}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return providerName
}

// FetchPage walks next_page_token cursors from page 1 to req.Page. When the
// cursor chain ends early the requested page does not exist and an empty
// slice is returned.
func (p *Provider) FetchPage(ctx context.Context, req jobdomain.PageRequest) ([]domain.JobListing, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, serpapi.ErrMissingAPIKey)
	}

	target := req.Page
	if target < 1 {
		target = 1
	}

	params := serpapi.SearchParams{
		Query:          combinedQuery(req),
		Location:       jobdomain.NormalizeLocation(req.Location),
		GeoToken:       req.GeoToken,
		EmploymentType: req.EmploymentCode,
	}

	var resp *serpapi.SearchResponse
	for page := 1; ; page++ {
		var err error
		resp, err = p.client.Search(ctx, params)
		p.metrics.UpstreamRequest(ctx, providerName, err)
		if err != nil {
			return nil, p.wrap(err, params, page)
		}

		if page == target {
			break
		}

		next := resp.Pagination.NextPageToken
		if next == "" {
			p.logger.Debug("pagination ended before requested page",
				"query", params.Query,
				"requested_page", target,
				"last_page", page,
			)
			return []domain.JobListing{}, nil
		}
		params.NextPageToken = next
	}

	listings := make([]domain.JobListing, 0, len(resp.Jobs))
	for _, raw := range resp.Jobs {
		listing := mapJob(raw)
		p.registry.Register(listing)
		listings = append(listings, listing)
	}
	return listings, nil
}

// DecodeID recovers search hints embedded in a google_jobs job_id
func (p *Provider) DecodeID(id string) (domain.IDMetadata, bool) {
	payload, ok := serpapi.DecodeJobID(id)
	if !ok {
		return domain.IDMetadata{}, false
	}
	return domain.IDMetadata{
		Title:      payload.JobTitle,
		Company:    payload.CompanyName,
		City:       payload.AddressCity,
		GeoToken:   payload.UULE,
		DocumentID: payload.HTIDocID,
	}, true
}

func (p *Provider) wrap(err error, params serpapi.SearchParams, page int) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	p.logger.Warn("google_jobs request failed",
		"err", err,
		"query", params.Query,
		"location", params.Location,
		"page", page,
	)
	return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
}

func combinedQuery(req jobdomain.PageRequest) string {
	parts := []string{strings.TrimSpace(req.Query)}
	for _, kw := range append(append([]string{}, req.RoleKeywords...), req.SeniorityKeywords...) {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, kw)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func mapJob(raw serpapi.JobResult) domain.JobListing {
	detected := raw.DetectedExtensions
	if detected == nil {
		detected = map[string]any{}
	}

	applyOptions := make([]domain.ApplyOption, 0, len(raw.ApplyOptions))
	for _, opt := range raw.ApplyOptions {
		if opt.Link == "" {
			continue
		}
		applyOptions = append(applyOptions, domain.ApplyOption{Title: opt.Title, Link: opt.Link})
	}

	highlights := make([]domain.Highlight, 0, len(raw.Highlights))
	for _, h := range raw.Highlights {
		items := h.Items
		if items == nil {
			items = []string{}
		}
		highlights = append(highlights, domain.Highlight{Title: h.Title, Items: items})
	}

	extensions := raw.Extensions
	if extensions == nil {
		extensions = []string{}
	}

	docID := raw.HTIDocID
	if payload, ok := serpapi.DecodeJobID(raw.JobID); ok && payload.HTIDocID != "" {
		docID = payload.HTIDocID
	}

	return domain.JobListing{
		ExternalID:         raw.JobID,
		DocumentID:         docID,
		Title:              firstNonEmpty(raw.Title, raw.JobTitle),
		Company:            raw.CompanyName,
		Location:           raw.Location,
		Source:             raw.Via,
		Description:        firstNonEmpty(raw.Description, raw.DescriptionFull),
		PostedAt:           stringField(detected, "posted_at"),
		Salary:             stringField(detected, "salary"),
		Extensions:         extensions,
		DetectedExtensions: detected,
		ApplyOptions:       applyOptions,
		Highlights:         highlights,
		ShareLink:          raw.ShareLink,
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
