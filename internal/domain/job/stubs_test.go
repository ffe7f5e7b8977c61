package job_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubProvider counts calls and registers what it returns, like a real provider
type stubProvider struct {
	mu       sync.Mutex
	calls    []job.PageRequest
	respond  func(req job.PageRequest) ([]domain.JobListing, error)
	registry job.Registry
	decoded  map[string]domain.IDMetadata

	// when set, every call signals started and then waits for gate to close
	// or its ctx to end
	gate    chan struct{}
	started chan struct{}
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) FetchPage(ctx context.Context, req job.PageRequest) ([]domain.JobListing, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if p.gate != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	listings, err := p.respond(req)
	if err != nil {
		return nil, err
	}
	if p.registry != nil {
		for _, l := range listings {
			p.registry.Register(l)
		}
	}
	return listings, nil
}

func (p *stubProvider) DecodeID(id string) (domain.IDMetadata, bool) {
	meta, ok := p.decoded[id]
	return meta, ok
}

func (p *stubProvider) Calls() []job.PageRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]job.PageRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

type failingCache struct {
	lookupErr error
	storeErr  error
	stores    int
	mu        sync.Mutex
}

func (c *failingCache) Lookup(context.Context, domain.SearchKey, time.Duration) ([]byte, bool, error) {
	return nil, false, c.lookupErr
}

func (c *failingCache) Store(context.Context, domain.SearchKey, []byte) error {
	c.mu.Lock()
	c.stores++
	c.mu.Unlock()
	return c.storeErr
}

type fakeArchive struct {
	mu       sync.Mutex
	listings map[string]domain.JobListing
	upserts  int
	findErr  error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{listings: make(map[string]domain.JobListing)}
}

func (a *fakeArchive) UpsertListings(_ context.Context, listings []domain.JobListing) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.upserts++
	for _, l := range listings {
		a.listings[l.ExternalID] = l
	}
	return nil
}

func (a *fakeArchive) FindListing(_ context.Context, id string) (domain.JobListing, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.findErr != nil {
		return domain.JobListing{}, false, a.findErr
	}
	for _, l := range a.listings {
		if l.Matches(id) {
			return l, true, nil
		}
	}
	return domain.JobListing{}, false, nil
}

var errUpstreamBoom = errors.Join(domain.ErrUpstream, errors.New("serpapi: API error (400): Unsupported `uule` parameter"))

func listing(ext, doc, title string) domain.JobListing {
	return domain.JobListing{
		ExternalID:   ext,
		DocumentID:   doc,
		Title:        title,
		Extensions:   []string{},
		ApplyOptions: []domain.ApplyOption{},
		Highlights:   []domain.Highlight{},
	}
}
