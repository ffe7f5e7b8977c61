// Package registry keeps recently seen listings addressable by id so detail
// requests can skip the upstream provider.
package registry

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// DefaultCapacity bounds each index when no capacity is configured
const DefaultCapacity = 10000

// Registry indexes listings by external id and by document id. Each index is
// an independent LRU, so a listing may outlive its twin entry in the other.
// Safe for concurrent use.
type Registry struct {
	byExternal *lru.Cache[string, domain.JobListing]
	byDocument *lru.Cache[string, domain.JobListing]
}

// New creates a Registry holding at most capacity entries per index
func New(capacity int) (*Registry, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	byExternal, err := lru.New[string, domain.JobListing](capacity)
	if err != nil {
		return nil, fmt.Errorf("registry: external index: %w", err)
	}
	byDocument, err := lru.New[string, domain.JobListing](capacity)
	if err != nil {
		return nil, fmt.Errorf("registry: document index: %w", err)
	}

	return &Registry{byExternal: byExternal, byDocument: byDocument}, nil
}

// Register upserts listing under each id it carries; last write wins
func (r *Registry) Register(listing domain.JobListing) {
	if listing.ExternalID != "" {
		r.byExternal.Add(listing.ExternalID, listing)
	}
	if listing.DocumentID != "" {
		r.byDocument.Add(listing.DocumentID, listing)
	}
}

// Lookup checks the external id index first, then the document id index
func (r *Registry) Lookup(id string) (domain.JobListing, bool) {
	if id == "" {
		return domain.JobListing{}, false
	}
	if l, ok := r.byExternal.Get(id); ok {
		return l, true
	}
	return r.byDocument.Get(id)
}

// Len reports the size of each index
func (r *Registry) Len() (external, document int) {
	return r.byExternal.Len(), r.byDocument.Len()
}
