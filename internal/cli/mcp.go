package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/mcp"
	"github.com/mvp-joe/ferrite/internal/search"
	"github.com/mvp-joe/ferrite/internal/storage"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Start the MCP server for code explanation tools",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants analyze and explain Rust source in the project.

The MCP server:
- Provides ferrite_analyze, ferrite_explain and ferrite_graph
- Provides ferrite_search when a project index exists ('ferrite index')
- Communicates via stdio (standard MCP transport)

Example:
  ferrite mcp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := loadProject(firstArg(args))
	if err != nil {
		return err
	}
	analyzer, memo, err := p.analyzer()
	if err != nil {
		return err
	}
	defer memo.Close()

	cfg := mcp.Config{
		ProjectRoot: p.root,
		Version:     Version,
		Analyzer:    analyzer,
		Logger:      p.logger.With("component", "mcp"),
	}

	db, err := p.openIndex(false)
	switch {
	case errors.Is(err, ErrNoIndex):
		p.logger.Debug("no project index", "path", p.dbPath())
	case err != nil:
		return err
	default:
		defer db.Close()
		searcher, err := search.FromIndex(ctx, storage.NewReader(db))
		if err != nil {
			return fmt.Errorf("failed to load search index: %w", err)
		}
		defer searcher.Close()
		cfg.Searcher = searcher
	}

	return mcp.NewServer(cfg).Serve(ctx)
}
