package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	defaultTimeout = 15 * time.Second
	engine         = "google_jobs"
)

// ErrMissingAPIKey is returned by NewClient when no key is configured
var ErrMissingAPIKey = errors.New("serpapi: SERPAPI_API_KEY is not configured")

// NewClient instantiates a SerpAPI client
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// Search issues a single google_jobs request
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("serpapi: client is nil")
	}

	u, err := c.buildSearchURL(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var payload SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("serpapi: decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	return &payload, nil
}

func (c *Client) buildSearchURL(params SearchParams) (string, error) {
	if strings.TrimSpace(params.Query) == "" {
		return "", fmt.Errorf("serpapi: query is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("serpapi: parse base url: %w", err)
	}

	values := u.Query()
	values.Set("engine", engine)
	values.Set("q", params.Query)
	values.Set("api_key", c.apiKey)

	switch {
	case params.GeoToken != "":
		values.Set("uule", params.GeoToken)
	case params.Location != "":
		values.Set("location", params.Location)
	}

	if params.EmploymentType != "" {
		values.Set("employment_type", params.EmploymentType)
	}
	if params.NextPageToken != "" {
		values.Set("next_page_token", params.NextPageToken)
	}

	u.RawQuery = values.Encode()
	return u.String(), nil
}

// errorMessage prefers the JSON error field of an error body
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
