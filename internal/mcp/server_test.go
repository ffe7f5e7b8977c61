package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobsearch/internal/config"
	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/internal/storage/memory"
	redisstore "github.com/honeycarbs/jobsearch/internal/storage/redis"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

type stubJobs struct{}

func (stubJobs) Search(_ context.Context, f domain.SearchFilters) (domain.SearchResponse, error) {
	return domain.SearchResponse{Query: f.Query, Page: f.Page, Jobs: []domain.JobListing{{ExternalID: "abc", Title: "SRE"}}}, nil
}

func (stubJobs) Detail(context.Context, string) (domain.DetailResult, error) {
	return domain.DetailResult{Job: domain.JobListing{ExternalID: "abc", Title: "SRE"}, Exact: true}, nil
}

func (stubJobs) Flush(context.Context) error { return nil }

func testResources(t *testing.T) Resources {
	t.Helper()
	savedSvc, err := saved.NewService(memory.NewSavedJobs(nil), nil)
	require.NoError(t, err)
	return Resources{
		JobService:   stubJobs{},
		SavedService: savedSvc,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	}
}

func TestHandlerServesRESTAndMetrics(t *testing.T) {
	h, err := newHandler(logging.NewNop(), testResources(t))
	require.NoError(t, err)

	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/jobs/search?q=sre")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandlerServesMCPTools(t *testing.T) {
	ctx := context.Background()

	h, err := newHandler(logging.NewNop(), testResources(t))
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	defer ts.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "test"}, nil)
	cs, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp/stream"}, nil)
	require.NoError(t, err)
	defer cs.Close()

	list, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	// sheets_export needs credentials
	assert.Equal(t, []string{"job_detail", "job_search", "list_saved_jobs", "remove_saved_job", "save_job"}, names)

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "job_search", Arguments: map[string]any{"query": "sre"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestOptionalProvidersFallBack(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	assert.Nil(t, provideArchive(nil))
	assert.IsType(t, &memory.SavedJobs{}, provideSavedRepository(nil))

	pool, cleanup, err := providePostgres(ctx, config.Config{}, logger)
	require.NoError(t, err)
	assert.Nil(t, pool)
	cleanup()

	rdb, cleanup, err := provideRedis(ctx, config.Config{}, logger)
	require.NoError(t, err)
	assert.Nil(t, rdb)
	cleanup()

	writer, err := provideSheets(ctx, config.Config{}, logger)
	require.NoError(t, err)
	assert.Nil(t, writer)

	assert.Empty(t, provideReadinessChecks(nil, nil, nil))
}

func TestProvideResultCacheTiers(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	cache, err := provideResultCache(ctx, config.Config{}, nil, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &memory.SearchCache{}, cache)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache, err = provideResultCache(ctx, config.Config{}, nil, rdb, logger)
	require.NoError(t, err)
	assert.IsType(t, &redisstore.TieredCache{}, cache)

	checks := provideReadinessChecks(nil, rdb, nil)
	require.Len(t, checks, 1)
	assert.Equal(t, "redis", checks[0].Name)
	assert.NoError(t, checks[0].Ping(ctx))
}

func TestProvideSerpAPIClientRequiresKey(t *testing.T) {
	_, err := provideSerpAPIClient(config.Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	var cfg config.Config
	cfg.SerpAPI.APIKey = "key"
	client, err := provideSerpAPIClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
