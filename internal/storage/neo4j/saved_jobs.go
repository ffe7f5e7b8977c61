package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
)

var _ saved.Repository = (*SavedJobRepository)(nil)

const upsertSavedQuery = `
	MERGE (u:User {id: $userId})
	MERGE (l:Listing {externalId: $jobId})
	ON CREATE SET l.payload = $payload
	MERGE (u)-[s:SAVED]->(l)
	ON CREATE SET s.id = $id, s.savedAt = $now
	SET s.payload = $payload
	RETURN s.savedAt AS savedAt
`

const listSavedQuery = `
	MATCH (:User {id: $userId})-[s:SAVED]->(l:Listing)
	RETURN l.externalId AS jobId, s.savedAt AS savedAt, s.payload AS payload
	ORDER BY s.savedAt DESC, jobId
`

const getSavedQuery = `
	MATCH (:User {id: $userId})-[s:SAVED]->(l:Listing {externalId: $jobId})
	RETURN l.externalId AS jobId, s.savedAt AS savedAt, s.payload AS payload
`

const deleteSavedQuery = `
	MATCH (:User {id: $userId})-[s:SAVED]->(:Listing {externalId: $jobId})
	DELETE s
	RETURN count(*) AS deleted
`

// SavedJobRepository stores bookmarks as (:User)-[:SAVED]->(:Listing).
// The relationship carries the listing snapshot taken at save time.
type SavedJobRepository struct {
	client sessionOpener
	clock  func() time.Time
}

// NewSavedJobRepository creates a SavedJobRepository with a Neo4j client
func NewSavedJobRepository(client sessionOpener) *SavedJobRepository {
	return &SavedJobRepository{
		client: client,
		clock:  time.Now,
	}
}

func (r *SavedJobRepository) Upsert(ctx context.Context, job domain.SavedJob) (domain.SavedJob, error) {
	payload, err := encodeListing(job.Job)
	if err != nil {
		return domain.SavedJob{}, err
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	savedAt, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, upsertSavedQuery, map[string]any{
			"userId":  job.UserID,
			"jobId":   job.JobID,
			"id":      uuid.NewString(),
			"now":     r.clock().UTC().UnixMilli(),
			"payload": payload,
		})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := record.Get("savedAt")
		return v, nil
	})
	if err != nil {
		return domain.SavedJob{}, fmt.Errorf("%w: save job: %w", domain.ErrPersistence, err)
	}

	job.SavedAt = fromMillis(savedAt)
	return job, nil
}

func (r *SavedJobRepository) List(ctx context.Context, userID string) ([]domain.SavedJob, error) {
	jobs, err := r.read(ctx, listSavedQuery, map[string]any{"userId": userID}, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list saved jobs: %w", domain.ErrPersistence, err)
	}
	return jobs, nil
}

func (r *SavedJobRepository) Get(ctx context.Context, userID, jobID string) (domain.SavedJob, bool, error) {
	jobs, err := r.read(ctx, getSavedQuery, map[string]any{"userId": userID, "jobId": jobID}, userID)
	if err != nil {
		return domain.SavedJob{}, false, fmt.Errorf("%w: get saved job: %w", domain.ErrPersistence, err)
	}
	if len(jobs) == 0 {
		return domain.SavedJob{}, false, nil
	}
	return jobs[0], true, nil
}

func (r *SavedJobRepository) Delete(ctx context.Context, userID, jobID string) (bool, error) {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, deleteSavedQuery, map[string]any{"userId": userID, "jobId": jobID})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := record.Get("deleted")
		n, _ := v.(int64)
		return n > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: delete saved job: %w", domain.ErrPersistence, err)
	}
	ok, _ := deleted.(bool)
	return ok, nil
}

func (r *SavedJobRepository) read(ctx context.Context, query string, params map[string]any, userID string) ([]domain.SavedJob, error) {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		jobs := make([]domain.SavedJob, 0, len(records))
		for _, record := range records {
			job, err := savedFromRecord(record.AsMap(), userID)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
		return jobs, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.SavedJob), nil
}

func savedFromRecord(row map[string]any, userID string) (domain.SavedJob, error) {
	jobID, _ := row["jobId"].(string)
	payload, _ := row["payload"].(string)

	job := domain.SavedJob{
		UserID:  userID,
		JobID:   jobID,
		SavedAt: fromMillis(row["savedAt"]),
	}
	if payload != "" {
		listing, err := decodeListing(payload)
		if err != nil {
			return domain.SavedJob{}, err
		}
		job.Job = listing
	}
	return job, nil
}

func fromMillis(v any) time.Time {
	ms, ok := v.(int64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
