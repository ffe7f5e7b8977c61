// Package memory provides process-local stores used when no database is
// configured and in tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

type searchRecord struct {
	key       domain.SearchKey
	payload   []byte
	createdAt time.Time
}

// SearchCache is an append-only result cache held in memory
type SearchCache struct {
	mu      sync.RWMutex
	records []searchRecord
	clock   func() time.Time
}

// NewSearchCache creates an empty cache; a nil clock means time.Now
func NewSearchCache(clock func() time.Time) *SearchCache {
	if clock == nil {
		clock = time.Now
	}
	return &SearchCache{clock: clock}
}

// Lookup returns the newest record for key created at or after now-ttl
func (c *SearchCache) Lookup(_ context.Context, key domain.SearchKey, ttl time.Duration) ([]byte, bool, error) {
	cutoff := c.clock().Add(-ttl)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var best *searchRecord
	for i := range c.records {
		rec := &c.records[i]
		if rec.createdAt.Before(cutoff) || !rec.key.Equal(key) {
			continue
		}
		if best == nil || !rec.createdAt.Before(best.createdAt) {
			best = rec
		}
	}
	if best == nil {
		return nil, false, nil
	}
	return slices.Clone(best.payload), true, nil
}

// Store appends a record; existing records are never touched
func (c *SearchCache) Store(_ context.Context, key domain.SearchKey, payload []byte) error {
	rec := searchRecord{
		key:       cloneKey(key),
		payload:   slices.Clone(payload),
		createdAt: c.clock(),
	}

	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()
	return nil
}

// Len reports how many records have been written
func (c *SearchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func cloneKey(k domain.SearchKey) domain.SearchKey {
	k.Roles = slices.Clone(k.Roles)
	k.Seniority = slices.Clone(k.Seniority)
	return k
}
