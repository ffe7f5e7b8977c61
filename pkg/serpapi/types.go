package serpapi

import (
	"fmt"
	"net/http"
	"time"
)

// Config defines SerpAPI client settings
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	// Timeout bounds a single request when HTTPClient is not supplied
	Timeout time.Duration
}

// Client queries the SerpAPI google_jobs engine
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// SearchParams describe one google_jobs request
type SearchParams struct {
	Query    string
	Location string

	// GeoToken is sent as uule and takes precedence over Location
	GeoToken       string
	EmploymentType string
	NextPageToken  string
}

// SearchResponse is the subset of the google_jobs payload the service reads
type SearchResponse struct {
	Error      string      `json:"error,omitempty"`
	Jobs       []JobResult `json:"jobs_results"`
	Pagination Pagination  `json:"serpapi_pagination"`
}

// Pagination carries the cursor to the next page, if any
type Pagination struct {
	NextPageToken string `json:"next_page_token"`
}

// JobResult is a raw google_jobs record
type JobResult struct {
	JobID              string         `json:"job_id"`
	HTIDocID           string         `json:"htidocid"`
	Title              string         `json:"title"`
	JobTitle           string         `json:"job_title"`
	CompanyName        string         `json:"company_name"`
	Location           string         `json:"location"`
	Via                string         `json:"via"`
	Description        string         `json:"description"`
	DescriptionFull    string         `json:"description_full"`
	Extensions         []string       `json:"extensions"`
	DetectedExtensions map[string]any `json:"detected_extensions"`
	ApplyOptions       []ApplyOption  `json:"apply_options"`
	Highlights         []Highlight    `json:"job_highlights"`
	ShareLink          string         `json:"share_link"`
}

type ApplyOption struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type Highlight struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// APIError is returned for non-2xx responses and for payloads carrying an
// error field
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serpapi: API error (%d): %s", e.StatusCode, e.Message)
}

// JobIDPayload is the JSON document google_jobs base64-encodes into job_id
type JobIDPayload struct {
	HTIDocID    string `json:"htidocid"`
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
	AddressCity string `json:"address_city"`
	UULE        string `json:"uule"`
}
