package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/cache"
	"github.com/mvp-joe/ferrite/internal/config"
	"github.com/mvp-joe/ferrite/internal/discovery"
	"github.com/mvp-joe/ferrite/internal/git"
	"github.com/mvp-joe/ferrite/internal/logging"
	"github.com/mvp-joe/ferrite/internal/storage"
)

// ErrNoIndex is returned by commands that need a project index when none has
// been built yet.
var ErrNoIndex = errors.New("no project index")

// gitOps is replaced in tests.
var gitOps git.Operations = git.NewOperations()

// project is the resolved root, configuration and logger a command runs with.
type project struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

// loadProject resolves the project root from dir, then --root, then the git
// worktree around the working directory, and loads its configuration.
func loadProject(dir string) (*project, error) {
	if dir == "" {
		dir = viper.GetString("root")
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = gitOps.WorktreeRoot(wd)
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("failed to open project root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &project{root: root, cfg: cfg, logger: newLogger(cfg, "cli")}, nil
}

// newLogger builds a logger from the config; --verbose forces debug level.
func newLogger(cfg *config.Config, source string) *slog.Logger {
	level := cfg.Logging.Level
	if viper.GetBool("verbose") {
		level = "debug"
	}
	return logging.New(logging.OptionsFor(source, level, cfg.Logging.Format))
}

// analyzer returns an Analyzer backed by a memo sized from the config. The
// returned memo must be closed by the caller.
func (p *project) analyzer() (*analysis.Analyzer, *cache.Memo, error) {
	memo, err := cache.NewMemo(p.cfg.Cache.MaxEntries, p.cfg.Cache.TTL())
	if err != nil {
		return nil, nil, err
	}
	a := analysis.New(
		analysis.WithCache(memo),
		analysis.WithLogger(p.logger.With("component", "analysis")),
	)
	return a, memo, nil
}

func (p *project) discovery() (*discovery.Discovery, error) {
	return discovery.New(p.root, discovery.Options{
		Include:          p.cfg.Paths.Include,
		Ignore:           p.cfg.Paths.Ignore,
		RespectGitignore: p.cfg.Paths.RespectGitignore,
	})
}

func (p *project) dbPath() string {
	return p.cfg.Storage.DBPathFor(p.root)
}

// openIndex opens the project index, creating it when create is set.
// Otherwise a missing database is reported as ErrNoIndex.
func (p *project) openIndex(create bool) (*sql.DB, error) {
	path := p.dbPath()
	if !create {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s, run 'ferrite index' first", ErrNoIndex, path)
		}
	}
	return storage.Open(path)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, out io.Writer, what string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			fmt.Fprintf(out, "\nInterrupted! Cancelling %s...\n", what)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// readSource reads a file, or stdin when path is "-".
func readSource(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
