package tools

import (
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// errorResult reports a failure back to the model as a tool error
func errorResult(err error) *sdkmcp.CallToolResult {
	res := textResult(err.Error())
	res.IsError = true
	return res
}

// toolError turns a service error into a tool error. Domain errors are
// shown as-is; anything else is reported without detail.
func toolError(err error) (*sdkmcp.CallToolResult, any, error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrConfiguration):
		return errorResult(err), nil, nil
	default:
		return errorResult(errors.New("internal error")), nil, nil
	}
}
