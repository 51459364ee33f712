package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/lexer"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// AnalyzeRequest is the argument schema of ferrite_analyze.
type AnalyzeRequest struct {
	Source        string `json:"source"`
	Symbol        string `json:"symbol,omitempty"`
	IncludeTokens bool   `json:"include_tokens,omitempty"`
}

// AnalyzeResponse is the result of ferrite_analyze.
type AnalyzeResponse struct {
	Hash       string           `json:"hash"`
	LineCount  int              `json:"line_count"`
	Symbols    []symbols.Symbol `json:"symbols"`
	References map[string][]int `json:"references"`
	Tokens     []lexer.Token    `json:"tokens,omitempty"`
}

// AddAnalyzeTool registers ferrite_analyze, which analyzes source passed inline.
func AddAnalyzeTool(s *server.MCPServer, analyzer *analysis.Analyzer) {
	tool := mcp.NewTool(
		"ferrite_analyze",
		mcp.WithDescription(`Analyze a Rust-like source buffer without touching the file system.

Returns every top-level declaration with its kind, 0-based line extent, members and a
heuristic explanation (why it exists, how it works, design pattern, memory and safety
notes, relationships), plus the lines each declared name is mentioned on.`),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Complete source text to analyze")),
		mcp.WithString("symbol",
			mcp.Description("Only return declarations with this exact name")),
		mcp.WithBoolean("include_tokens",
			mcp.Description("Also return the classified token stream (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createAnalyzeHandler(analyzer))
}

func createAnalyzeHandler(analyzer *analysis.Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req AnalyzeRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.Source == "" {
			return mcp.NewToolResultError("source parameter is required"), nil
		}

		res := analyzer.Analyze(req.Source)
		resp := AnalyzeResponse{
			Hash:       res.Hash,
			LineCount:  res.LineCount,
			Symbols:    res.Symbols,
			References: res.Refs,
		}
		if req.Symbol != "" {
			found, err := analysis.Find(res, req.Symbol)
			if errors.Is(err, analysis.ErrSymbolNotFound) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			resp.Symbols = found
			resp.References = map[string][]int{req.Symbol: res.Refs[req.Symbol]}
		}
		if req.IncludeTokens {
			resp.Tokens = res.Tokens
		}
		return jsonResult(resp)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
