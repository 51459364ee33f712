// Package mcp exposes ferrite's analysis as Model Context Protocol tools
// served over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/logging"
)

// Config selects what the server exposes.
type Config struct {
	ProjectRoot string
	Version     string
	Analyzer    *analysis.Analyzer
	// Searcher enables ferrite_search. Without an index it stays nil and the
	// tool is not registered.
	Searcher Searcher
	Logger   *slog.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// NewServer registers every available tool.
func NewServer(cfg Config) *Server {
	if cfg.Analyzer == nil {
		cfg.Analyzer = analysis.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}

	s := server.NewMCPServer("ferrite", cfg.Version, server.WithToolCapabilities(true))
	AddAnalyzeTool(s, cfg.Analyzer)
	AddExplainTool(s, cfg.Analyzer, cfg.ProjectRoot)
	AddGraphTool(s, cfg.Analyzer, cfg.ProjectRoot)
	if cfg.Searcher != nil {
		AddSearchTool(s, cfg.Searcher)
	} else {
		cfg.Logger.Info("no project index, ferrite_search disabled")
	}
	return &Server{mcp: s, logger: cfg.Logger}
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// Serve serves on stdio until the client disconnects, ctx ends or the
// process receives SIGINT/SIGTERM.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
