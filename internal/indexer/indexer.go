// Package indexer keeps the project index in step with the files on disk.
// Changed files are analyzed in parallel and written to storage one at a
// time; unchanged files are skipped by content hash.
package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/discovery"
	"github.com/mvp-joe/ferrite/internal/logging"
	"github.com/mvp-joe/ferrite/internal/storage"
)

// Stats describes one index pass.
type Stats struct {
	FilesIndexed   int           `json:"files_indexed"`
	FilesUnchanged int           `json:"files_unchanged"`
	FilesRemoved   int           `json:"files_removed"`
	FilesFailed    int           `json:"files_failed"`
	Symbols        int           `json:"symbols"`
	SymbolDelta    int           `json:"symbol_delta"`
	Duration       time.Duration `json:"duration"`
}

// Options configures an Indexer. Zero values select the defaults.
type Options struct {
	Workers  int
	Analyzer *analysis.Analyzer
	Logger   *slog.Logger
	Progress ProgressReporter
}

// Indexer analyzes project files into storage.
type Indexer struct {
	discovery *discovery.Discovery
	reader    *storage.Reader
	writer    *storage.Writer
	analyzer  *analysis.Analyzer
	workers   int
	logger    *slog.Logger
	progress  ProgressReporter
}

// New creates an Indexer over db. The schema must already exist.
func New(disc *discovery.Discovery, db *sql.DB, opts Options) *Indexer {
	idx := &Indexer{
		discovery: disc,
		reader:    storage.NewReader(db),
		writer:    storage.NewWriter(db),
		analyzer:  opts.Analyzer,
		workers:   opts.Workers,
		logger:    opts.Logger,
		progress:  opts.Progress,
	}
	if idx.analyzer == nil {
		idx.analyzer = analysis.New()
	}
	if idx.workers <= 0 {
		idx.workers = 1
	}
	if idx.logger == nil {
		idx.logger = logging.Nop()
	}
	if idx.progress == nil {
		idx.progress = NoOpProgressReporter{}
	}
	return idx
}

// Index brings the whole project up to date.
func (idx *Indexer) Index(ctx context.Context) (*Stats, error) {
	return idx.run(ctx, nil)
}

// IndexFiles re-checks only the given relative paths, as reported by the
// watcher. Paths that vanished are removed from the index.
func (idx *Indexer) IndexFiles(ctx context.Context, paths []string) (*Stats, error) {
	if len(paths) == 0 {
		return &Stats{}, nil
	}
	return idx.run(ctx, paths)
}

type analyzed struct {
	path   string
	size   int64
	result *analysis.Result
	err    error
}

func (idx *Indexer) run(ctx context.Context, hint []string) (stats *Stats, err error) {
	start := time.Now()

	runID, err := idx.writer.StartRun()
	if err != nil {
		return nil, err
	}
	stats = &Stats{}
	defer func() {
		stats.Duration = time.Since(start)
		if ferr := idx.writer.FinishRun(runID, stats.FilesIndexed, stats.FilesUnchanged, stats.FilesRemoved, err); ferr != nil && err == nil {
			err = ferr
		}
	}()

	changes, err := idx.detectChanges(ctx, hint)
	if err != nil {
		return stats, err
	}
	changed := changes.Changed()
	stats.FilesUnchanged = len(changes.Unchanged)
	idx.progress.OnDiscoveryComplete(len(changed), len(changes.Unchanged), len(changes.Deleted))
	idx.logger.Debug("changes detected",
		"added", len(changes.Added),
		"modified", len(changes.Modified),
		"deleted", len(changes.Deleted),
		"unchanged", len(changes.Unchanged))

	for _, rel := range changes.Deleted {
		before, err := idx.symbolCount(rel)
		if err != nil {
			return stats, err
		}
		if err := idx.writer.DeleteFile(rel); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return stats, err
		}
		stats.FilesRemoved++
		stats.SymbolDelta -= before
	}

	results, err := idx.analyzeAll(ctx, changed)
	if err != nil {
		return stats, err
	}

	for _, a := range results {
		if a.err != nil {
			idx.logger.Warn("skipping unreadable file", "file", a.path, "error", a.err)
			stats.FilesFailed++
			idx.progress.OnFileProcessed(a.path)
			continue
		}
		before, err := idx.symbolCount(a.path)
		if err != nil {
			return stats, err
		}
		rec := storage.FileRecord{FilePath: a.path, SizeBytes: a.size}
		if err := idx.writer.WriteFile(rec, a.result); err != nil {
			return stats, err
		}
		stats.FilesIndexed++
		stats.SymbolDelta += len(a.result.Symbols) - before
		idx.progress.OnFileProcessed(a.path)
	}

	total, err := idx.reader.Stats()
	if err != nil {
		return stats, err
	}
	stats.Symbols = total.Symbols
	stats.Duration = time.Since(start)

	idx.logger.Info("index complete",
		"indexed", stats.FilesIndexed,
		"unchanged", stats.FilesUnchanged,
		"removed", stats.FilesRemoved,
		"failed", stats.FilesFailed,
		"symbols", stats.Symbols,
		"duration", stats.Duration)
	idx.progress.OnComplete(stats)
	return stats, nil
}

// analyzeAll reads and analyzes paths with up to idx.workers goroutines.
// Results keep the order of paths. A file that cannot be read is reported
// in its result rather than failing the pass.
func (idx *Indexer) analyzeAll(ctx context.Context, paths []string) ([]analyzed, error) {
	results := make([]analyzed, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = idx.analyzeFile(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("indexing cancelled: %w", err)
	}
	return results, nil
}

func (idx *Indexer) analyzeFile(rel string) analyzed {
	content, err := os.ReadFile(filepath.Join(idx.discovery.Root(), filepath.FromSlash(rel)))
	if err != nil {
		return analyzed{path: rel, err: err}
	}
	return analyzed{
		path:   rel,
		size:   int64(len(content)),
		result: idx.analyzer.Analyze(string(content)),
	}
}

func (idx *Indexer) symbolCount(rel string) (int, error) {
	rec, err := idx.reader.File(rel)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.SymbolCount, nil
}
