package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/domain/job"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// SheetsWriter is the subset of the Google Sheets client the export needs
type SheetsWriter interface {
	AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	ClearValues(ctx context.Context, spreadsheetID, rng string) error
}

// SheetHeader is the column order written for every listing
var SheetHeader = []any{"Title", "Company", "Location", "Apply link", "Via", "Posted", "Job ID"}

// SheetTarget identifies where rows are written
type SheetTarget struct {
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name, defaults to Sheet1"`
	Range         string `json:"range,omitempty" jsonschema:"Optional A1 range override"`
}

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	JobIDs   []string         `json:"job_ids,omitempty" jsonschema:"Jobs to resolve and export"`
	Filters  *JobSearchParams `json:"filters,omitempty" jsonschema:"job_search filters used when job_ids is empty"`
	Upsert   bool             `json:"upsert,omitempty" jsonschema:"Overwrite from the top of the tab, header row included, instead of appending"`
	ClearTab bool             `json:"clear_tab,omitempty" jsonschema:"Clear the data rows of the tab before writing"`
	Sheet    SheetTarget      `json:"sheet" jsonschema:"Destination sheet"`
}

// SheetsExportResult describes the summary returned after export
type SheetsExportResult struct {
	SpreadsheetID string    `json:"spreadsheet_id"`
	Tab           string    `json:"tab"`
	WrittenRows   int       `json:"written_rows"`
	Skipped       []string  `json:"skipped,omitempty"`
	Mode          string    `json:"mode"`
	CompletedAt   time.Time `json:"completed_at"`
}

// WithSheetsExport registers the sheets_export tool
func WithSheetsExport(writer SheetsWriter, jobs job.Service) Option {
	if writer == nil || jobs == nil {
		return nil
	}
	return func(reg *registry) {
		exp := &sheetsExporter{writer: writer, jobs: jobs, clock: time.Now, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Export job listings, by id or by search filters, as rows of a Google Sheet",
		}, exp.handle)
	}
}

type sheetsExporter struct {
	writer SheetsWriter
	jobs   job.Service
	clock  func() time.Time
	logger *logging.Logger
}

func (e *sheetsExporter) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params *SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	if params.Sheet.SpreadsheetID == "" {
		return errorResult(fmt.Errorf("%w: sheet.spreadsheet_id is required", domain.ErrInvalidInput)), nil, nil
	}

	listings, skipped, err := e.collect(ctx, params)
	if err != nil {
		return toolError(err)
	}

	result, err := e.export(ctx, params, listings)
	if err != nil {
		e.logger.Error("sheets export failed", "err", err, "spreadsheet_id", params.Sheet.SpreadsheetID)
		return errorResult(err), nil, nil
	}
	result.Skipped = skipped

	msg := fmt.Sprintf("exported %d row(s) to %s (%s)", result.WrittenRows, result.Tab, result.Mode)
	if len(skipped) > 0 {
		msg += fmt.Sprintf(", skipped %d unresolved id(s)", len(skipped))
	}
	return textResult(msg), result, nil
}

// collect resolves the listings to export. Ids that only resolve to an
// approximate match are skipped rather than exported under the wrong job.
func (e *sheetsExporter) collect(ctx context.Context, params *SheetsExportParams) ([]domain.JobListing, []string, error) {
	if len(params.JobIDs) == 0 {
		if params.Filters == nil {
			return nil, nil, fmt.Errorf("%w: job_ids or filters is required", domain.ErrInvalidInput)
		}
		resp, err := e.jobs.Search(ctx, params.Filters.filters())
		if err != nil {
			return nil, nil, err
		}
		return resp.Jobs, nil, nil
	}

	var (
		listings []domain.JobListing
		skipped  []string
	)
	for _, id := range params.JobIDs {
		detail, err := e.jobs.Detail(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			skipped = append(skipped, id)
			continue
		}
		if !detail.Exact {
			skipped = append(skipped, id)
			continue
		}
		listings = append(listings, detail.Job)
	}
	return listings, skipped, nil
}

func (e *sheetsExporter) export(ctx context.Context, params *SheetsExportParams, listings []domain.JobListing) (SheetsExportResult, error) {
	tab := params.Sheet.Tab
	if tab == "" {
		tab = "Sheet1"
	}
	result := SheetsExportResult{
		SpreadsheetID: params.Sheet.SpreadsheetID,
		Tab:           tab,
		Mode:          "append",
	}
	id := params.Sheet.SpreadsheetID

	if params.ClearTab {
		if err := e.writer.ClearValues(ctx, id, tab+"!A2:Z"); err != nil {
			return result, fmt.Errorf("sheets: clear %s: %w", tab, err)
		}
	}

	values := listingRows(listings)
	switch {
	case len(values) == 0:
		result.Mode = "noop"
	case params.Upsert:
		result.Mode = "upsert"
		rng := params.Sheet.Range
		if rng == "" {
			rng = tab + "!A1"
		}
		if err := e.writer.UpdateValues(ctx, id, rng, append([][]any{SheetHeader}, values...)); err != nil {
			return result, fmt.Errorf("sheets: upsert rows: %w", err)
		}
	default:
		rng := params.Sheet.Range
		if rng == "" {
			rng = tab + "!A1"
		}
		if err := e.writer.AppendValues(ctx, id, rng, values); err != nil {
			return result, fmt.Errorf("sheets: append rows: %w", err)
		}
	}

	result.WrittenRows = len(values)
	result.CompletedAt = e.clock().UTC()
	return result, nil
}

func listingRows(listings []domain.JobListing) [][]any {
	values := make([][]any, 0, len(listings))
	for _, j := range listings {
		values = append(values, []any{
			j.Title,
			j.Company,
			j.Location,
			applyLink(j),
			j.Source,
			j.PostedAt,
			j.ExternalID,
		})
	}
	return values
}
