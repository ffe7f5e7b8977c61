package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/telemetry"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

const defaultFallbackQuery = "software engineer"

// Resolution sources reported to metrics
const (
	SourceRegistry    = "registry"
	SourceArchive     = "archive"
	SourceTargeted    = "targeted"
	SourceFallback    = "fallback"
	SourceApproximate = "approximate"
	SourceNotFound    = "not_found"
)

// Resolver recovers a single listing from an opaque job id
type Resolver struct {
	provider Provider
	registry Registry
	archive  ListingArchive
	logger   *logging.Logger
	metrics  *telemetry.Metrics
}

// NewResolver builds a Resolver; provider and registry are required
func NewResolver(opts ...Option) (*Resolver, error) {
	return newResolver(newConfig(opts))
}

func newResolver(cfg *config) (*Resolver, error) {
	if cfg.provider == nil {
		return nil, fmt.Errorf("job.Resolver: provider is required")
	}
	if cfg.registry == nil {
		return nil, fmt.Errorf("job.Resolver: registry is required")
	}

	return &Resolver{
		provider: cfg.provider,
		registry: cfg.registry,
		archive:  cfg.archive,
		logger:   cfg.logger.Named("detail"),
		metrics:  cfg.metrics,
	}, nil
}

// Resolve looks the id up in the registry, then the archive, then
// re-searches upstream using metadata decoded from the id.
//
// When the upstream search returns listings but none of them carries the
// requested id, the first listing is returned with Exact set to false.
// Callers must treat such a result as a guess: it may be a different job.
// ErrNotFound is returned only when the fallback search is empty.
func (r *Resolver) Resolve(ctx context.Context, id string) (domain.DetailResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.DetailResult{}, fmt.Errorf("%w: job id is required", domain.ErrInvalidInput)
	}

	if listing, ok := r.registry.Lookup(id); ok {
		r.metrics.DetailResolved(ctx, SourceRegistry)
		return domain.DetailResult{Job: listing, Exact: true}, nil
	}

	if listing, ok := r.fromArchive(ctx, id); ok {
		r.registry.Register(listing)
		r.metrics.DetailResolved(ctx, SourceArchive)
		return domain.DetailResult{Job: listing, Exact: true}, nil
	}

	meta, decoded := r.provider.DecodeID(id)

	if decoded && meta.DocumentID != "" {
		listing, ok, err := r.targeted(ctx, id, meta)
		if err != nil {
			return domain.DetailResult{}, err
		}
		if ok {
			r.metrics.DetailResolved(ctx, SourceTargeted)
			return domain.DetailResult{Job: listing, Exact: true}, nil
		}
	}

	query := fallbackQuery(id, meta, decoded)
	location := meta.City
	if location == "" {
		location = domain.DefaultLocation
	}

	listings, err := r.fetchWithFallback(ctx, query, location, meta.GeoToken)
	if err != nil {
		return domain.DetailResult{}, err
	}
	if len(listings) == 0 {
		r.metrics.DetailResolved(ctx, SourceNotFound)
		return domain.DetailResult{}, fmt.Errorf("%w: job %q", domain.ErrNotFound, id)
	}

	for _, l := range listings {
		if l.Matches(id) || l.Matches(meta.DocumentID) {
			r.metrics.DetailResolved(ctx, SourceFallback)
			return domain.DetailResult{Job: l, Exact: true}, nil
		}
	}

	r.logger.Info("detail not re-resolvable, returning first fallback listing",
		"job_id", id,
		"query", query,
		"returned_job_id", listings[0].ExternalID,
	)
	r.metrics.DetailResolved(ctx, SourceApproximate)
	return domain.DetailResult{Job: listings[0], Exact: false}, nil
}

func (r *Resolver) fromArchive(ctx context.Context, id string) (domain.JobListing, bool) {
	if r.archive == nil {
		return domain.JobListing{}, false
	}

	listing, ok, err := r.archive.FindListing(ctx, id)
	if err != nil {
		r.logger.Warn("listing archive lookup failed", "err", err, "job_id", id)
		return domain.JobListing{}, false
	}
	return listing, ok
}

// targeted searches by the embedded document id. Provider failures here are
// logged and swallowed; only configuration errors propagate.
func (r *Resolver) targeted(ctx context.Context, id string, meta domain.IDMetadata) (domain.JobListing, bool, error) {
	listings, err := r.fetchWithFallback(ctx, "htidocid:"+meta.DocumentID, domain.DefaultLocation, meta.GeoToken)
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return domain.JobListing{}, false, err
		}
		r.logger.Warn("targeted detail search failed", "err", err, "job_id", id, "htidocid", meta.DocumentID)
		return domain.JobListing{}, false, nil
	}

	for _, l := range listings {
		if l.Matches(id) || l.Matches(meta.DocumentID) {
			return l, true, nil
		}
	}
	return domain.JobListing{}, false, nil
}

// fetchWithFallback fetches page 1. An upstream failure for a non-default
// location, which is how a bad geo token surfaces, is retried once with the
// default location and no geo token.
func (r *Resolver) fetchWithFallback(ctx context.Context, query, location, geoToken string) ([]domain.JobListing, error) {
	listings, err := r.provider.FetchPage(ctx, PageRequest{
		Query:    query,
		Location: location,
		Page:     1,
		GeoToken: geoToken,
	})
	if err == nil {
		return listings, nil
	}

	if !errors.Is(err, domain.ErrUpstream) || strings.EqualFold(strings.TrimSpace(location), domain.DefaultLocation) {
		return nil, err
	}

	r.logger.Warn("detail search failed, retrying with default location",
		"err", err,
		"location", location,
		"had_geo_token", geoToken != "",
	)
	return r.provider.FetchPage(ctx, PageRequest{
		Query:    query,
		Location: domain.DefaultLocation,
		Page:     1,
	})
}

func fallbackQuery(id string, meta domain.IDMetadata, decoded bool) string {
	if !decoded {
		return id
	}

	parts := make([]string, 0, 2)
	for _, p := range []string{meta.Title, meta.Company} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return defaultFallbackQuery
	}
	return strings.Join(parts, " ")
}
