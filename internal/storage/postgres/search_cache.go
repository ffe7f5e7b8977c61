// Package postgres stores search results in the append-only job_searches table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/honeycarbs/jobsearch/internal/domain"
	jobdomain "github.com/honeycarbs/jobsearch/internal/domain/job"
)

var _ jobdomain.ResultCache = (*SearchCache)(nil)

// querier is the subset of pgxpool.Pool used here
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS job_searches (
	id                UUID PRIMARY KEY,
	query             VARCHAR(255) NOT NULL,
	location          VARCHAR(255) NOT NULL,
	page              INTEGER NOT NULL DEFAULT 1,
	employment_type   VARCHAR(64),
	role_filters      JSONB NOT NULL DEFAULT '[]'::jsonb,
	seniority_filters JSONB NOT NULL DEFAULT '[]'::jsonb,
	response_payload  JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_job_searches_query ON job_searches (query);
CREATE INDEX IF NOT EXISTS ix_job_searches_created_at ON job_searches (created_at)`

const insertSQL = `
INSERT INTO job_searches
	(id, query, location, page, employment_type, role_filters, seniority_filters, response_payload, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6::jsonb, $7::jsonb, $8::jsonb, $9)`

const lookupSQL = `
SELECT response_payload FROM job_searches
WHERE query = $1
  AND location = $2
  AND page = $3
  AND COALESCE(employment_type, '') = $4
  AND role_filters = $5::jsonb
  AND seniority_filters = $6::jsonb
  AND created_at >= $7
ORDER BY created_at DESC
LIMIT 1`

// SearchCache implements job.ResultCache on Postgres. Rows are only ever
// inserted; freshness is decided at read time.
type SearchCache struct {
	db    querier
	clock func() time.Time
}

// NewSearchCache wraps a pool (or any querier); a nil clock means time.Now
func NewSearchCache(db querier, clock func() time.Time) (*SearchCache, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres.SearchCache: db is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &SearchCache{db: db, clock: clock}, nil
}

// EnsureSchema creates the job_searches table and its indexes if missing
func (c *SearchCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: ensure job_searches schema: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (c *SearchCache) Lookup(ctx context.Context, key domain.SearchKey, ttl time.Duration) ([]byte, bool, error) {
	roles, seniority, err := filterJSON(key)
	if err != nil {
		return nil, false, err
	}
	cutoff := c.clock().UTC().Add(-ttl)

	var payload []byte
	err = c.db.QueryRow(ctx, lookupSQL,
		key.Query,
		key.Location,
		key.Page,
		string(key.EmploymentType),
		roles,
		seniority,
		cutoff,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: lookup job_searches: %w", domain.ErrPersistence, err)
	}
	return payload, true, nil
}

func (c *SearchCache) Store(ctx context.Context, key domain.SearchKey, payload []byte) error {
	roles, seniority, err := filterJSON(key)
	if err != nil {
		return err
	}

	_, err = c.db.Exec(ctx, insertSQL,
		uuid.NewString(),
		key.Query,
		key.Location,
		key.Page,
		string(key.EmploymentType),
		roles,
		seniority,
		string(payload),
		c.clock().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert job_searches: %w", domain.ErrPersistence, err)
	}
	return nil
}

func filterJSON(key domain.SearchKey) (roles, seniority string, err error) {
	r, err := json.Marshal(nonNil(key.Roles))
	if err != nil {
		return "", "", fmt.Errorf("%w: encode role filters: %w", domain.ErrPersistence, err)
	}
	s, err := json.Marshal(nonNil(key.Seniority))
	if err != nil {
		return "", "", fmt.Errorf("%w: encode seniority filters: %w", domain.ErrPersistence, err)
	}
	return string(r), string(s), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
