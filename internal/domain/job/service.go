package job

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/telemetry"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

type Service interface {
	// Search serves a page of listings, from the result cache when a fresh
	// entry exists and from the provider otherwise
	Search(ctx context.Context, filters domain.SearchFilters) (domain.SearchResponse, error)

	// Detail resolves a single listing by opaque id. See Resolver.Resolve
	// for when the result is approximate.
	Detail(ctx context.Context, id string) (domain.DetailResult, error)

	// Flush waits for background cache and archive writes to finish
	Flush(ctx context.Context) error
}

// Option configures Service
type Option func(*config)

type config struct {
	provider     Provider
	cache        ResultCache
	registry     Registry
	archive      ListingArchive
	ttl          time.Duration
	fetchTimeout time.Duration
	writeTimeout time.Duration
	clock        func() time.Time
	logger       *logging.Logger
	metrics      *telemetry.Metrics
}

// WithProvider sets the upstream job provider
func WithProvider(p Provider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithCache sets the result cache
func WithCache(cache ResultCache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithRegistry sets the listing registry
func WithRegistry(r Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithArchive sets an optional durable listing archive
func WithArchive(a ListingArchive) Option {
	return func(c *config) {
		c.archive = a
	}
}

// WithCacheTTL sets the default freshness window for cached searches
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFetchTimeout bounds one shared upstream walk, independent of the
// callers waiting on it
func WithFetchTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetrics sets the metric instruments
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		ttl:          DefaultCacheTTL,
		fetchTimeout: 2 * time.Minute,
		writeTimeout: 10 * time.Second,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	return cfg
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := newConfig(opts)

	if cfg.provider == nil {
		return nil, fmt.Errorf("job.Service: provider is required")
	}
	if cfg.cache == nil {
		return nil, fmt.Errorf("job.Service: result cache is required")
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}

	return &service{
		provider:     cfg.provider,
		cache:        cfg.cache,
		registry:     cfg.registry,
		archive:      cfg.archive,
		resolver:     resolver,
		ttl:          cfg.ttl,
		fetchTimeout: cfg.fetchTimeout,
		writeTimeout: cfg.writeTimeout,
		clock:        cfg.clock,
		logger:       cfg.logger.Named("search"),
		metrics:      cfg.metrics,
	}, nil
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(
	provider Provider,
	cache ResultCache,
	registry Registry,
	archive ListingArchive,
	ttl time.Duration,
	logger *logging.Logger,
	metrics *telemetry.Metrics,
) (Service, error) {
	return NewService(
		WithProvider(provider),
		WithCache(cache),
		WithRegistry(registry),
		WithArchive(archive),
		WithCacheTTL(ttl),
		WithLogger(logger),
		WithMetrics(metrics),
	)
}

type service struct {
	provider     Provider
	cache        ResultCache
	registry     Registry
	archive      ListingArchive
	resolver     *Resolver
	ttl          time.Duration
	fetchTimeout time.Duration
	writeTimeout time.Duration
	clock        func() time.Time
	logger       *logging.Logger
	metrics      *telemetry.Metrics

	inflight singleflight.Group
	pending  sync.WaitGroup
}

// Search normalizes filters, consults the cache and falls back to the provider
func (s *service) Search(ctx context.Context, filters domain.SearchFilters) (domain.SearchResponse, error) {
	started := time.Now()

	key, err := Normalize(filters)
	if err != nil {
		return domain.SearchResponse{}, err
	}

	ttl := s.ttl
	if filters.MaxAge > 0 {
		ttl = filters.MaxAge
	}

	if resp, ok := s.lookup(ctx, key, ttl); ok {
		// registry entries may have been evicted or lost on restart
		s.remember(resp.Jobs)
		resp.Cached = true
		s.metrics.SearchDuration(ctx, time.Since(started), true)
		return resp, nil
	}

	// Identical misses arriving together share one upstream walk. The walk
	// runs detached from the caller that started it so one caller going
	// away does not fail the others; each caller waits on its own ctx.
	ch := s.inflight.DoChan(key.Hash(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, key)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.SearchResponse{}, ctx.Err()
	}
	if res.Err != nil {
		return domain.SearchResponse{}, res.Err
	}
	if res.Shared {
		s.logger.Debug("joined in-flight search", "query", key.Query, "page", key.Page)
	}

	s.metrics.SearchDuration(ctx, time.Since(started), false)
	return res.Val.(domain.SearchResponse), nil
}

func (s *service) remember(listings []domain.JobListing) {
	if s.registry == nil {
		return
	}
	for _, l := range listings {
		s.registry.Register(l)
	}
}

func (s *service) Detail(ctx context.Context, id string) (domain.DetailResult, error) {
	return s.resolver.Resolve(ctx, id)
}

// Flush blocks until pending background writes complete or ctx ends
func (s *service) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job.Service: flush pending writes: %w", ctx.Err())
	}
}

func (s *service) lookup(ctx context.Context, key domain.SearchKey, ttl time.Duration) (domain.SearchResponse, bool) {
	payload, ok, err := s.cache.Lookup(ctx, key, ttl)
	if err != nil {
		s.metrics.CacheLookup(ctx, telemetry.ResultError)
		s.logger.Warn("cache lookup failed, treating as miss", "err", err, "query", key.Query)
		return domain.SearchResponse{}, false
	}
	if !ok {
		s.metrics.CacheLookup(ctx, telemetry.ResultMiss)
		return domain.SearchResponse{}, false
	}

	var resp domain.SearchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		s.metrics.CacheLookup(ctx, telemetry.ResultError)
		s.logger.Warn("discarding undecodable cached payload", "err", err, "query", key.Query)
		return domain.SearchResponse{}, false
	}

	s.metrics.CacheLookup(ctx, telemetry.ResultHit)
	return resp, true
}

func (s *service) fetch(ctx context.Context, key domain.SearchKey) (domain.SearchResponse, error) {
	listings, err := s.provider.FetchPage(ctx, PageRequest{
		Query:             key.Query,
		Location:          key.Location,
		Page:              key.Page,
		EmploymentCode:    EmploymentCode(key.EmploymentType),
		RoleKeywords:      key.Roles,
		SeniorityKeywords: SeniorityKeywords(key.Seniority),
	})
	if err != nil {
		return domain.SearchResponse{}, err
	}
	if listings == nil {
		listings = []domain.JobListing{}
	}

	resp := domain.SearchResponse{
		Query:            key.Query,
		Location:         key.Location,
		Page:             key.Page,
		EmploymentType:   key.EmploymentType,
		RoleFilters:      key.Roles,
		SeniorityFilters: key.Seniority,
		Jobs:             listings,
		FetchedAt:        s.clock().UTC(),
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("search served uncached: encode payload", "err", err, "query", key.Query)
		return resp, nil
	}

	s.persist(key, payload, listings)
	return resp, nil
}

// persist writes the cache record and archives listings without holding up
// the response. Failures are logged; the caller already has its result.
func (s *service) persist(key domain.SearchKey, payload []byte, listings []domain.JobListing) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()

		err := s.cache.Store(ctx, key, payload)
		s.metrics.CacheWrite(ctx, err)
		if err != nil {
			s.logger.Warn("search served uncached: cache write failed",
				"err", err,
				"query", key.Query,
				"location", key.Location,
				"page", key.Page,
			)
		}

		if s.archive == nil || len(listings) == 0 {
			return
		}
		if err := s.archive.UpsertListings(ctx, listings); err != nil {
			s.logger.Warn("listing archive write failed", "err", err, "listings", len(listings))
		}
	}()
}
