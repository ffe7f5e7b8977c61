package saved

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// Repository persists saved jobs, unique per (user, job id)
type Repository interface {
	// Upsert replaces the stored listing, keeping the first save time
	Upsert(ctx context.Context, job domain.SavedJob) (domain.SavedJob, error)
	// List returns a user's saved jobs, newest first
	List(ctx context.Context, userID string) ([]domain.SavedJob, error)
	Get(ctx context.Context, userID, jobID string) (domain.SavedJob, bool, error)
	Delete(ctx context.Context, userID, jobID string) (bool, error)
}

type Service interface {
	Save(ctx context.Context, userID string, listing domain.JobListing) (domain.SavedJob, error)
	List(ctx context.Context, userID string) ([]domain.SavedJob, error)
	Get(ctx context.Context, userID, jobID string) (domain.SavedJob, error)
	Delete(ctx context.Context, userID, jobID string) error
}

// NewService builds the saved-jobs service
func NewService(repo Repository, logger *logging.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("saved.Service: repository is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &service{repo: repo, logger: logger.Named("saved")}, nil
}

type service struct {
	repo   Repository
	logger *logging.Logger
}

func (s *service) Save(ctx context.Context, userID string, listing domain.JobListing) (domain.SavedJob, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return domain.SavedJob{}, err
	}

	jobID := strings.TrimSpace(listing.ExternalID)
	if jobID == "" {
		return domain.SavedJob{}, fmt.Errorf("%w: job_id is required", domain.ErrInvalidInput)
	}
	listing.ExternalID = jobID

	saved, err := s.repo.Upsert(ctx, domain.SavedJob{UserID: userID, JobID: jobID, Job: listing})
	if err != nil {
		return domain.SavedJob{}, err
	}

	s.logger.Debug("job saved", "user_id", userID, "job_id", jobID)
	return saved, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.SavedJob, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, jobID string) (domain.SavedJob, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return domain.SavedJob{}, err
	}

	job, ok, err := s.repo.Get(ctx, userID, strings.TrimSpace(jobID))
	if err != nil {
		return domain.SavedJob{}, err
	}
	if !ok {
		return domain.SavedJob{}, fmt.Errorf("%w: saved job %q", domain.ErrNotFound, jobID)
	}
	return job, nil
}

func (s *service) Delete(ctx context.Context, userID, jobID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, userID, strings.TrimSpace(jobID))
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: saved job %q", domain.ErrNotFound, jobID)
	}
	return nil
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return userID, nil
}
