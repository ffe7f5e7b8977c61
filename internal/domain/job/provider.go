package job

import (
	"context"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// PageRequest addresses a single page of upstream results
type PageRequest struct {
	Query    string
	Location string
	Page     int

	// GeoToken is a provider-specific location token; when set it is used
	// instead of Location
	GeoToken string

	// EmploymentCode is the provider's structured employment filter
	EmploymentCode string

	// RoleKeywords and SeniorityKeywords are folded into the keyword query
	RoleKeywords      []string
	SeniorityKeywords []string
}

// Provider represents an external job data source
type Provider interface {
	// e.g. "google_jobs"
	Name() string

	// FetchPage walks the provider's cursor pagination up to req.Page and
	// returns that page's listings. A page past the end yields an empty
	// slice, not an error. Every returned listing has been registered.
	FetchPage(ctx context.Context, req PageRequest) ([]domain.JobListing, error)

	// DecodeID recovers metadata embedded in an opaque job id. ok is false
	// when the id is not decodable; it never fails otherwise.
	DecodeID(id string) (meta domain.IDMetadata, ok bool)
}

// Registry is the in-process lookup of listings seen in search results
type Registry interface {
	// Register upserts the listing by external id and by document id
	Register(listing domain.JobListing)

	// Lookup checks external ids first, then document ids
	Lookup(id string) (domain.JobListing, bool)
}
