package neo4j

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/jobsearch/internal/domain"
	jobdomain "github.com/honeycarbs/jobsearch/internal/domain/job"
)

// Ensure ListingArchive implements job.ListingArchive
var _ jobdomain.ListingArchive = (*ListingArchive)(nil)

// sessionOpener is satisfied by *pkgneo4j.Client
type sessionOpener interface {
	NewSession(ctx context.Context, config neo4j.SessionConfig) neo4j.SessionWithContext
}

const upsertListingsQuery = `
	UNWIND $listings AS listing
	MERGE (l:Listing {externalId: listing.externalId})
	SET l.documentId = listing.documentId,
	    l.title = listing.title,
	    l.location = listing.location,
	    l.via = listing.via,
	    l.payload = listing.payload,
	    l.fetchedAt = datetime({epochMillis: listing.fetchedAt})
	WITH l, listing
	WHERE listing.company <> ""
	MERGE (c:Company {name: listing.company})
	MERGE (l)-[:POSTED_BY]->(c)
`

const findListingQuery = `
	MATCH (l:Listing)
	WHERE l.externalId = $id OR l.documentId = $id
	RETURN l.payload AS payload
	ORDER BY CASE WHEN l.externalId = $id THEN 0 ELSE 1 END
	LIMIT 1
`

// ListingArchive keeps every listing seen in search results so detail
// lookups survive restarts and registry eviction
type ListingArchive struct {
	client sessionOpener
	clock  func() time.Time
}

// NewListingArchive creates a ListingArchive with a Neo4j client
func NewListingArchive(client sessionOpener) *ListingArchive {
	return &ListingArchive{
		client: client,
		clock:  time.Now,
	}
}

// UpsertListings merges listings by external id; listings without one are skipped
func (r *ListingArchive) UpsertListings(ctx context.Context, listings []domain.JobListing) error {
	data, err := listingParams(listings, r.clock())
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, upsertListingsQuery, map[string]any{"listings": data})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: upsert listings: %w", domain.ErrPersistence, err)
	}
	return nil
}

// FindListing loads a listing by external id, falling back to document id
func (r *ListingArchive) FindListing(ctx context.Context, id string) (domain.JobListing, bool, error) {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	payload, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, findListingQuery, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return "", result.Err()
		}
		v, _ := result.Record().Get("payload")
		s, _ := v.(string)
		return s, nil
	})
	if err != nil {
		return domain.JobListing{}, false, fmt.Errorf("%w: find listing: %w", domain.ErrPersistence, err)
	}

	raw, _ := payload.(string)
	if raw == "" {
		return domain.JobListing{}, false, nil
	}

	listing, err := decodeListing(raw)
	if err != nil {
		return domain.JobListing{}, false, err
	}
	return listing, true, nil
}

func listingParams(listings []domain.JobListing, fetchedAt time.Time) ([]map[string]any, error) {
	data := make([]map[string]any, 0, len(listings))
	for _, l := range listings {
		if l.ExternalID == "" {
			continue
		}
		payload, err := encodeListing(l)
		if err != nil {
			return nil, err
		}
		data = append(data, map[string]any{
			"externalId": l.ExternalID,
			"documentId": l.DocumentID,
			"title":      l.Title,
			"company":    l.Company,
			"location":   l.Location,
			"via":        l.Source,
			"payload":    payload,
			"fetchedAt":  fetchedAt.UnixMilli(),
		})
	}
	return data, nil
}

// listings are stored whole as JSON so nested fields round-trip unchanged
func encodeListing(l domain.JobListing) (string, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("%w: encode listing %q: %w", domain.ErrPersistence, l.ExternalID, err)
	}
	return string(b), nil
}

func decodeListing(raw string) (domain.JobListing, error) {
	var l domain.JobListing
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return domain.JobListing{}, fmt.Errorf("%w: decode listing: %w", domain.ErrPersistence, err)
	}
	return l, nil
}
