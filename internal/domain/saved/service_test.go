package saved_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/internal/storage/memory"
)

func newService(t *testing.T) saved.Service {
	t.Helper()
	svc, err := saved.NewService(memory.NewSavedJobs(nil), nil)
	require.NoError(t, err)
	return svc
}

func TestSaveAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	got, err := svc.Save(ctx, "user-1", domain.JobListing{ExternalID: " job-1 ", Title: "SRE"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.JobID)
	assert.False(t, got.SavedAt.IsZero())

	loaded, err := svc.Get(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "SRE", loaded.Job.Title)
}

func TestSaveRequiresJobAndUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", domain.JobListing{Title: "no id"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(ctx, " ", domain.JobListing{ExternalID: "job-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveIsUniquePerUserAndJob(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", domain.JobListing{ExternalID: "job-1", Title: "v1"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "user-1", domain.JobListing{ExternalID: "job-1", Title: "v2"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "user-2", domain.JobListing{ExternalID: "job-1", Title: "other"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "v2", list[0].Job.Title)
}

func TestUnknownSavedJob(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", domain.JobListing{ExternalID: "job-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", "job-1"))

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
