package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/graph"
)

// GraphRequest is the argument schema of ferrite_graph.
type GraphRequest struct {
	File   string `json:"file"`
	Symbol string `json:"symbol,omitempty"`
	Depth  int    `json:"depth,omitempty"`
}

// GraphResponse is the result of ferrite_graph. Related is set only when a
// symbol was given.
type GraphResponse struct {
	File    string           `json:"file"`
	Nodes   []*graph.Node    `json:"nodes"`
	Edges   []*graph.Edge    `json:"edges"`
	Cycles  [][]string       `json:"cycles"`
	Related []graph.Neighbor `json:"related,omitempty"`
	Mermaid string           `json:"mermaid"`
}

// AddGraphTool registers ferrite_graph, the relationship graph of one file.
func AddGraphTool(s *server.MCPServer, analyzer *analysis.Analyzer, projectRoot string) {
	tool := mcp.NewTool(
		"ferrite_graph",
		mcp.WithDescription(`Relationship graph of one project file: which declarations implement,
use or are implemented by which others, any cycles among them, and a Mermaid rendering.
With a symbol, also lists the declarations within 'depth' hops of it.`),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path relative to the project root")),
		mcp.WithString("symbol",
			mcp.Description("Declaration to center a neighborhood query on")),
		mcp.WithNumber("depth",
			mcp.Description("Neighborhood depth (1-10, default: 1)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createGraphHandler(analyzer, projectRoot))
}

func createGraphHandler(analyzer *analysis.Analyzer, projectRoot string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req GraphRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.File == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}

		res, rel, err := analyzeProjectFile(analyzer, projectRoot, req.File)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		g, err := graph.FromSymbols(rel, res.Symbols)
		if err != nil {
			return nil, err
		}
		cycles, err := g.Cycles()
		if err != nil {
			return nil, err
		}

		resp := GraphResponse{
			File:    rel,
			Nodes:   g.Nodes(),
			Edges:   g.Edges(),
			Cycles:  cycles,
			Mermaid: g.Mermaid(),
		}
		if resp.Edges == nil {
			resp.Edges = []*graph.Edge{}
		}
		if req.Symbol != "" {
			if resp.Related, err = g.Related(req.Symbol, req.Depth); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		return jsonResult(resp)
	}
}
