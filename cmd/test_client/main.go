package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP streamable HTTP endpoint")
	query := flag.String("query", "software engineer", "search query")
	location := flag.String("location", "Portland", "search location")
	user := flag.String("user", "test-client", "user id for saved jobs")
	flag.Parse()

	ctx := context.Background()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "jobsearch-test-client",
		Version: "0.2.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: *endpoint,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)

	jobID := testJobSearch(ctx, session, *query, *location)
	if jobID == "" {
		log.Fatal("job_search returned no jobs, nothing left to test")
	}
	testJobDetail(ctx, session, jobID)
	testSavedJobs(ctx, session, *user, jobID)

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: list tools")

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Fatalf("list tools failed: %v", err)
	}
	for _, tool := range res.Tools {
		fmt.Printf("  %s: %s\n", tool.Name, tool.Description)
	}
}

// testJobSearch returns the id of the first listing, or "" when none came back
func testJobSearch(ctx context.Context, session *mcp.ClientSession, query, location string) string {
	fmt.Println("\nTEST: job_search")

	result := call(ctx, session, "job_search", map[string]any{
		"query":    query,
		"location": location,
	})
	printResult(result)

	var resp struct {
		Jobs []struct {
			ID string `json:"job_id"`
		} `json:"jobs"`
	}
	decode(result, &resp)
	if len(resp.Jobs) == 0 {
		return ""
	}
	fmt.Println("job_search passed")
	return resp.Jobs[0].ID
}

func testJobDetail(ctx context.Context, session *mcp.ClientSession, jobID string) {
	fmt.Println("\nTEST: job_detail")

	result := call(ctx, session, "job_detail", map[string]any{"job_id": jobID})
	printResult(result)
	fmt.Println("job_detail passed")
}

func testSavedJobs(ctx context.Context, session *mcp.ClientSession, user, jobID string) {
	fmt.Println("\nTEST: save_job / list_saved_jobs / remove_saved_job")

	printResult(call(ctx, session, "save_job", map[string]any{"user_id": user, "job_id": jobID}))
	printResult(call(ctx, session, "list_saved_jobs", map[string]any{"user_id": user}))
	printResult(call(ctx, session, "remove_saved_job", map[string]any{"user_id": user, "job_id": jobID}))
	fmt.Println("saved jobs passed")
}

func call(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		log.Fatalf("%s failed: %v", name, err)
	}
	if result.IsError {
		printResult(result)
		log.Fatalf("%s returned a tool error", name)
	}
	return result
}

func decode(res *mcp.CallToolResult, out any) {
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		log.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Fatalf("decode structured content: %v", err)
	}
}

func printResult(res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
}
