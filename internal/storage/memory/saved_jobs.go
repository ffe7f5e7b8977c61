package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

type savedKey struct {
	userID string
	jobID  string
}

// SavedJobs keeps per-user bookmarks in memory
type SavedJobs struct {
	mu    sync.RWMutex
	items map[savedKey]domain.SavedJob
	clock func() time.Time
}

func NewSavedJobs(clock func() time.Time) *SavedJobs {
	if clock == nil {
		clock = time.Now
	}
	return &SavedJobs{
		items: make(map[savedKey]domain.SavedJob),
		clock: clock,
	}
}

// Upsert replaces the stored listing but keeps the original save time
func (s *SavedJobs) Upsert(_ context.Context, job domain.SavedJob) (domain.SavedJob, error) {
	k := savedKey{userID: job.UserID, jobID: job.JobID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[k]; ok {
		job.SavedAt = existing.SavedAt
	} else {
		job.SavedAt = s.clock().UTC()
	}
	s.items[k] = job
	return job, nil
}

// List returns a user's saved jobs, newest first
func (s *SavedJobs) List(_ context.Context, userID string) ([]domain.SavedJob, error) {
	s.mu.RLock()
	out := make([]domain.SavedJob, 0)
	for k, v := range s.items {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].JobID < out[j].JobID
		}
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

func (s *SavedJobs) Get(_ context.Context, userID, jobID string) (domain.SavedJob, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.items[savedKey{userID: userID, jobID: jobID}]
	return job, ok, nil
}

func (s *SavedJobs) Delete(_ context.Context, userID, jobID string) (bool, error) {
	k := savedKey{userID: userID, jobID: jobID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[k]; !ok {
		return false, nil
	}
	delete(s.items, k)
	return true, nil
}
