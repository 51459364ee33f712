package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/symbols"
	"github.com/mvp-joe/ferrite/internal/xref"
)

// ErrOutsideRoot is returned for paths that escape the project root.
var ErrOutsideRoot = errors.New("path is outside the project root")

// ExplainRequest is the argument schema of ferrite_explain.
type ExplainRequest struct {
	File   string `json:"file"`
	Symbol string `json:"symbol,omitempty"`
}

// ExplainedSymbol is a symbol with the lines that use it outside its own extent.
type ExplainedSymbol struct {
	symbols.Symbol
	Uses []int `json:"uses"`
}

// ExplainResponse is the result of ferrite_explain.
type ExplainResponse struct {
	File    string            `json:"file"`
	Symbols []ExplainedSymbol `json:"symbols"`
}

// AddExplainTool registers ferrite_explain, which explains declarations of a
// project file.
func AddExplainTool(s *server.MCPServer, analyzer *analysis.Analyzer, projectRoot string) {
	tool := mcp.NewTool(
		"ferrite_explain",
		mcp.WithDescription(`Explain the declarations of one project file.

With a symbol name, returns only the declarations of that name (a type and its impl
blocks share a name). Each result includes the heuristic explanation and the 0-based
lines elsewhere in the file that mention it.`),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path relative to the project root (e.g., 'src/lib.rs')")),
		mcp.WithString("symbol",
			mcp.Description("Declaration name to explain; omit for every declaration")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createExplainHandler(analyzer, projectRoot))
}

func createExplainHandler(analyzer *analysis.Analyzer, projectRoot string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ExplainRequest
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

		syms := res.Symbols
		if req.Symbol != "" {
			if syms, err = analysis.Find(res, req.Symbol); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		resp := ExplainResponse{File: rel, Symbols: make([]ExplainedSymbol, 0, len(syms))}
		for _, s := range syms {
			resp.Symbols = append(resp.Symbols, ExplainedSymbol{Symbol: s, Uses: xref.Uses(res.Refs, s)})
		}
		return jsonResult(resp)
	}
}

// resolvePath returns the absolute and slash-separated relative forms of
// file, which may be relative to projectRoot or absolute inside it.
func resolvePath(projectRoot, file string) (abs, rel string, err error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", "", err
	}
	abs = file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, file)
	}
	abs = filepath.Clean(abs)
	r, err := filepath.Rel(root, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrOutsideRoot, file)
	}
	return abs, filepath.ToSlash(r), nil
}

func analyzeProjectFile(analyzer *analysis.Analyzer, projectRoot, file string) (*analysis.Result, string, error) {
	abs, rel, err := resolvePath(projectRoot, file)
	if err != nil {
		return nil, "", err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return analyzer.Analyze(string(content)), rel, nil
}
