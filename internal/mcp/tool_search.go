package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/ferrite/internal/search"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Searcher is the search backend of ferrite_search.
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error)
}

// SearchRequest is the argument schema of ferrite_search.
type SearchRequest struct {
	Query    string `json:"query"`
	Kind     string `json:"kind,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// SearchResponse is the result of ferrite_search.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
	TookMs  int             `json:"took_ms"`
}

// AddSearchTool registers ferrite_search over the indexed project.
func AddSearchTool(s *server.MCPServer, searcher Searcher) {
	tool := mcp.NewTool(
		"ferrite_search",
		mcp.WithDescription(`Full-text search over indexed declarations and their explanations.

Uses bleve query syntax:
- Field scoping: name:Inventory, why:constructor, how:discriminant, doc:warehouse
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "reference-counted"
- Wildcards: Inv*

Run 'ferrite index' first; results reflect the index at server start.`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string")),
		mcp.WithString("kind",
			mcp.Description("Only return this declaration kind (e.g., 'type-record', 'callable')")),
		mcp.WithString("file_path",
			mcp.Description("Wildcard filter on the file path (e.g., 'src/*')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createSearchHandler(searcher))
}

func createSearchHandler(searcher Searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		var req SearchRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		kind := symbols.Kind(req.Kind)
		if kind != "" && !kind.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", req.Kind)), nil
		}

		results, err := searcher.Search(ctx, req.Query, search.Options{
			Kind:     kind,
			FilePath: req.FilePath,
			Limit:    req.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		return jsonResult(SearchResponse{
			Query:   req.Query,
			Results: results,
			Total:   len(results),
			TookMs:  int(time.Since(start).Milliseconds()),
		})
	}
}
