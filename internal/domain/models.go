package domain

import (
	"time"
)

// DefaultLocation replaces blank and "remote" style locations
const DefaultLocation = "United States"

// EmploymentType is the structured employment filter accepted by search
type EmploymentType string

const (
	EmploymentAny        EmploymentType = ""
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentInternship EmploymentType = "internship"
)

// Seniority levels accepted by search
const (
	SeniorityEntry  = "entry"
	SeniorityMid    = "mid"
	SenioritySenior = "senior"
	SeniorityLead   = "lead"
)

// ApplyOption is a place the job can be applied to
type ApplyOption struct {
	Title string `json:"title,omitempty"`
	Link  string `json:"link"`
}

// Highlight is a titled group of bullet points (qualifications, benefits, ...)
type Highlight struct {
	Title string   `json:"title,omitempty"`
	Items []string `json:"items"`
}

// JobListing is the normalized job posting returned by search and detail.
// ExternalID is the opaque client-facing id; DocumentID is a secondary id
// recovered from it and may be empty.
type JobListing struct {
	ExternalID         string         `json:"job_id,omitempty"`
	DocumentID         string         `json:"htidocid,omitempty"`
	Title              string         `json:"title,omitempty"`
	Company            string         `json:"company,omitempty"`
	Location           string         `json:"location,omitempty"`
	Source             string         `json:"via,omitempty"`
	Description        string         `json:"description,omitempty"`
	PostedAt           string         `json:"posted_at,omitempty"`
	Salary             string         `json:"salary,omitempty"`
	Extensions         []string       `json:"extensions"`
	DetectedExtensions map[string]any `json:"detected_extensions"`
	ApplyOptions       []ApplyOption  `json:"apply_options"`
	Highlights         []Highlight    `json:"job_highlights"`
	ShareLink          string         `json:"share_link,omitempty"`
}

// Matches reports whether the listing is addressed by id, either as its
// external id or as its document id.
func (j JobListing) Matches(id string) bool {
	if id == "" {
		return false
	}
	return j.ExternalID == id || j.DocumentID == id
}

// SearchFilters are the raw, caller-supplied search parameters
type SearchFilters struct {
	Query          string
	Location       string
	Page           int
	EmploymentType string
	Roles          []string
	Seniority      []string

	// MaxAge overrides the default cache freshness window when positive
	MaxAge time.Duration
}

// SearchResponse is the payload returned to callers and stored in the result cache
type SearchResponse struct {
	Query            string         `json:"query"`
	Location         string         `json:"location"`
	Page             int            `json:"page"`
	EmploymentType   EmploymentType `json:"employment_type,omitempty"`
	RoleFilters      []string       `json:"role_filters"`
	SeniorityFilters []string       `json:"seniority_filters"`
	Jobs             []JobListing   `json:"jobs"`
	FetchedAt        time.Time      `json:"fetched_at"`
	Cached           bool           `json:"cached"`
}

// DetailResult is the outcome of resolving a single listing by id.
//
// Exact is false when the id could not be re-resolved upstream and the first
// listing of a fallback search was returned instead. Such a listing may
// describe a different job than the one requested.
type DetailResult struct {
	Job   JobListing `json:"job"`
	Exact bool       `json:"exact"`
}

// IDMetadata is what can be recovered from an opaque job id
type IDMetadata struct {
	Title      string
	Company    string
	City       string
	GeoToken   string
	DocumentID string
}

// SavedJob is a listing bookmarked by a user
type SavedJob struct {
	UserID  string     `json:"-"`
	JobID   string     `json:"job_id"`
	SavedAt time.Time  `json:"saved_at"`
	Job     JobListing `json:"job"`
}
