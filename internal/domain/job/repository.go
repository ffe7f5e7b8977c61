package job

import (
	"context"
	"time"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// DefaultCacheTTL is how long a cached search stays fresh unless the caller overrides it
const DefaultCacheTTL = time.Hour

// ResultCache stores computed search responses keyed by SearchKey.
// Writes are append-only; lookups pick the newest record still within ttl.
type ResultCache interface {
	// Lookup returns the newest payload for key created no earlier than
	// now-ttl. ok is false on a miss.
	Lookup(ctx context.Context, key domain.SearchKey, ttl time.Duration) (payload []byte, ok bool, err error)

	// Store appends a new record for key
	Store(ctx context.Context, key domain.SearchKey, payload []byte) error
}

// ListingArchive is a durable store of listings that outlives the process
type ListingArchive interface {
	// UpsertListings creates or updates listings keyed by external id
	UpsertListings(ctx context.Context, listings []domain.JobListing) error

	// FindListing loads a listing by external id or document id
	FindListing(ctx context.Context, id string) (domain.JobListing, bool, error)
}
