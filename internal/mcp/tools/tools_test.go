package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/saved"
	"github.com/honeycarbs/jobsearch/internal/storage/memory"
)

type fakeJobs struct {
	search    domain.SearchResponse
	searchErr error
	details   map[string]domain.DetailResult
	filters   []domain.SearchFilters
}

func (f *fakeJobs) Search(_ context.Context, filters domain.SearchFilters) (domain.SearchResponse, error) {
	f.filters = append(f.filters, filters)
	return f.search, f.searchErr
}

func (f *fakeJobs) Detail(_ context.Context, id string) (domain.DetailResult, error) {
	d, ok := f.details[id]
	if !ok {
		return domain.DetailResult{}, errors.Join(domain.ErrNotFound, errors.New("job "+id))
	}
	return d, nil
}

func (f *fakeJobs) Flush(context.Context) error { return nil }

type sheetCall struct {
	op, spreadsheetID, rng string
	values                 [][]any
}

type fakeSheets struct {
	mu    sync.Mutex
	calls []sheetCall
	err   error
}

func (s *fakeSheets) record(c sheetCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.err
}

func (s *fakeSheets) AppendValues(_ context.Context, id, rng string, values [][]any) error {
	return s.record(sheetCall{op: "append", spreadsheetID: id, rng: rng, values: values})
}

func (s *fakeSheets) UpdateValues(_ context.Context, id, rng string, values [][]any) error {
	return s.record(sheetCall{op: "update", spreadsheetID: id, rng: rng, values: values})
}

func (s *fakeSheets) ClearValues(_ context.Context, id, rng string) error {
	return s.record(sheetCall{op: "clear", spreadsheetID: id, rng: rng})
}

func sre() domain.JobListing {
	return domain.JobListing{
		ExternalID:   "abc",
		Title:        "SRE",
		Company:      "Acme",
		Location:     "Austin, TX",
		Source:       "LinkedIn",
		PostedAt:     "2 days ago",
		ApplyOptions: []domain.ApplyOption{{Title: "Acme", Link: "https://acme.example/apply"}},
	}
}

// connect registers opts on a fresh server and returns a connected client session
func connect(t *testing.T, opts ...Option) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "jobsearch-test", Version: "test"}, nil)
	Register(server, nil, opts...)

	clientT, serverT := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func structured(t *testing.T, res *sdkmcp.CallToolResult, out any) {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestNilServicesRegisterNothing(t *testing.T) {
	assert.Nil(t, WithJobSearch(nil))
	assert.Nil(t, WithJobDetail(nil))
	assert.Nil(t, WithSaveJob(&fakeJobs{}, nil))
	assert.Nil(t, WithListSavedJobs(nil))
	assert.Nil(t, WithRemoveSavedJob(nil))
	assert.Nil(t, WithSheetsExport(nil, &fakeJobs{}))

	// nil options are skipped
	connect(t, nil, WithJobSearch(nil))
}

func TestJobSearchTool(t *testing.T) {
	jobs := &fakeJobs{search: domain.SearchResponse{
		Query:    "golang",
		Location: domain.DefaultLocation,
		Page:     1,
		Jobs:     []domain.JobListing{sre()},
		Cached:   true,
	}}
	cs := connect(t, WithJobSearch(jobs))

	res := call(t, cs, "job_search", map[string]any{
		"query":     "golang",
		"roles":     []string{"backend"},
		"seniority": []string{"senior"},
	})
	require.False(t, res.IsError)

	require.Len(t, jobs.filters, 1)
	assert.Equal(t, 1, jobs.filters[0].Page, "page defaults to 1")
	assert.Equal(t, []string{"backend"}, jobs.filters[0].Roles)

	assert.Contains(t, text(t, res), "SRE at Acme (Austin, TX) [abc]")
	assert.Contains(t, text(t, res), "cached")

	var out domain.SearchResponse
	structured(t, res, &out)
	require.Len(t, out.Jobs, 1)
	assert.Equal(t, "abc", out.Jobs[0].ExternalID)
}

func TestJobSearchToolErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "invalid input", err: errors.Join(domain.ErrInvalidInput, errors.New("page must be >= 1")), want: "page must be >= 1"},
		{name: "upstream", err: errors.Join(domain.ErrUpstream, errors.New("quota exceeded")), want: "quota exceeded"},
		{name: "internal", err: errors.New("password=hunter2"), want: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := connect(t, WithJobSearch(&fakeJobs{searchErr: tt.err}))
			res := call(t, cs, "job_search", map[string]any{"query": "go"})
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
			assert.NotContains(t, text(t, res), "hunter2")
		})
	}
}

func TestJobDetailTool(t *testing.T) {
	jobs := &fakeJobs{details: map[string]domain.DetailResult{
		"abc":   {Job: sre(), Exact: true},
		"fuzzy": {Job: sre()},
	}}
	cs := connect(t, WithJobDetail(jobs))

	res := call(t, cs, "job_detail", map[string]any{"job_id": "abc"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "apply: https://acme.example/apply")
	assert.NotContains(t, text(t, res), "approximate")

	var out domain.DetailResult
	structured(t, res, &out)
	assert.True(t, out.Exact)

	res = call(t, cs, "job_detail", map[string]any{"job_id": "fuzzy"})
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "approximate match")

	res = call(t, cs, "job_detail", map[string]any{"job_id": "missing"})
	assert.True(t, res.IsError)
}

func TestSavedJobTools(t *testing.T) {
	jobs := &fakeJobs{details: map[string]domain.DetailResult{
		"abc":   {Job: sre(), Exact: true},
		"fuzzy": {Job: sre()},
	}}
	svc, err := saved.NewService(memory.NewSavedJobs(nil), nil)
	require.NoError(t, err)

	cs := connect(t, WithSaveJob(jobs, svc), WithListSavedJobs(svc), WithRemoveSavedJob(svc))

	res := call(t, cs, "save_job", map[string]any{"user_id": "u1", "job_id": "abc"})
	require.False(t, res.IsError, text(t, res))

	res = call(t, cs, "save_job", map[string]any{"user_id": "u1", "job_id": "fuzzy"})
	assert.True(t, res.IsError, "approximate matches are not saved")

	res = call(t, cs, "save_job", map[string]any{"user_id": "", "job_id": "abc"})
	assert.True(t, res.IsError)

	res = call(t, cs, "list_saved_jobs", map[string]any{"user_id": "u1"})
	require.False(t, res.IsError)
	var list SavedJobsResult
	structured(t, res, &list)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, "SRE", list.Jobs[0].Job.Title)

	res = call(t, cs, "remove_saved_job", map[string]any{"user_id": "u1", "job_id": "abc"})
	require.False(t, res.IsError)

	res = call(t, cs, "remove_saved_job", map[string]any{"user_id": "u1", "job_id": "abc"})
	assert.True(t, res.IsError, "already removed")
}

func TestSheetsExportByFilters(t *testing.T) {
	jobs := &fakeJobs{search: domain.SearchResponse{Jobs: []domain.JobListing{sre()}}}
	sheets := &fakeSheets{}
	cs := connect(t, WithSheetsExport(sheets, jobs))

	res := call(t, cs, "sheets_export", map[string]any{
		"filters": map[string]any{"query": "sre"},
		"sheet":   map[string]any{"spreadsheet_id": "sheet-1", "tab": "Jobs"},
	})
	require.False(t, res.IsError, text(t, res))

	require.Len(t, sheets.calls, 1)
	c := sheets.calls[0]
	assert.Equal(t, "append", c.op)
	assert.Equal(t, "sheet-1", c.spreadsheetID)
	assert.Equal(t, "Jobs!A1", c.rng)
	assert.Equal(t, [][]any{{"SRE", "Acme", "Austin, TX", "https://acme.example/apply", "LinkedIn", "2 days ago", "abc"}}, c.values)

	var out SheetsExportResult
	structured(t, res, &out)
	assert.Equal(t, 1, out.WrittenRows)
	assert.Equal(t, "append", out.Mode)
}

func TestSheetsExportByIDsUpsertAndClear(t *testing.T) {
	jobs := &fakeJobs{details: map[string]domain.DetailResult{
		"abc":   {Job: sre(), Exact: true},
		"fuzzy": {Job: sre()},
	}}
	sheets := &fakeSheets{}
	cs := connect(t, WithSheetsExport(sheets, jobs))

	res := call(t, cs, "sheets_export", map[string]any{
		"job_ids":   []string{"abc", "fuzzy", "missing"},
		"upsert":    true,
		"clear_tab": true,
		"sheet":     map[string]any{"spreadsheet_id": "sheet-1"},
	})
	require.False(t, res.IsError, text(t, res))

	require.Len(t, sheets.calls, 2)
	assert.Equal(t, sheetCall{op: "clear", spreadsheetID: "sheet-1", rng: "Sheet1!A2:Z"}, sheets.calls[0])
	assert.Equal(t, "update", sheets.calls[1].op)
	assert.Equal(t, "Sheet1!A1", sheets.calls[1].rng)
	require.Len(t, sheets.calls[1].values, 2)
	assert.Equal(t, SheetHeader, sheets.calls[1].values[0])

	var out SheetsExportResult
	structured(t, res, &out)
	assert.Equal(t, 1, out.WrittenRows)
	assert.Equal(t, []string{"fuzzy", "missing"}, out.Skipped)
}

func TestSheetsExportValidationAndFailures(t *testing.T) {
	jobs := &fakeJobs{search: domain.SearchResponse{Jobs: []domain.JobListing{sre()}}}

	cs := connect(t, WithSheetsExport(&fakeSheets{}, jobs))
	res := call(t, cs, "sheets_export", map[string]any{"sheet": map[string]any{"spreadsheet_id": "s"}})
	assert.True(t, res.IsError, "job_ids or filters is required")

	res = call(t, cs, "sheets_export", map[string]any{
		"filters": map[string]any{"query": "sre"},
		"sheet":   map[string]any{"spreadsheet_id": ""},
	})
	assert.True(t, res.IsError)

	cs = connect(t, WithSheetsExport(&fakeSheets{err: errors.New("permission denied")}, jobs))
	res = call(t, cs, "sheets_export", map[string]any{
		"filters": map[string]any{"query": "sre"},
		"sheet":   map[string]any{"spreadsheet_id": "s"},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "permission denied")
}
