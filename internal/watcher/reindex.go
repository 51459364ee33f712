package watcher

import (
	"context"
	"log/slog"

	"github.com/mvp-joe/ferrite/internal/indexer"
)

// Indexer is the part of *indexer.Indexer the watcher drives.
type Indexer interface {
	IndexFiles(ctx context.Context, paths []string) (*indexer.Stats, error)
}

// Reindexer connects a FileWatcher to an Indexer.
type Reindexer struct {
	files   *FileWatcher
	indexer Indexer
	logger  *slog.Logger

	// OnBatch, when set, is called after every re-index attempt.
	OnBatch func(files []string, stats *indexer.Stats, err error)
}

// NewReindexer creates a Reindexer. Call Start to begin.
func NewReindexer(files *FileWatcher, idx Indexer) *Reindexer {
	return &Reindexer{files: files, indexer: idx, logger: files.logger}
}

// Start watches until ctx is cancelled or Stop is called.
func (r *Reindexer) Start(ctx context.Context) error {
	return r.files.Start(ctx, func(files []string) {
		r.reindex(ctx, files)
	})
}

// Stop stops the underlying FileWatcher.
func (r *Reindexer) Stop() error {
	return r.files.Stop()
}

func (r *Reindexer) reindex(ctx context.Context, files []string) {
	r.logger.Info("reindexing changed files", "count", len(files))

	stats, err := r.indexer.IndexFiles(ctx, files)
	if err != nil {
		r.logger.Error("incremental reindex failed", "error", err)
	} else {
		r.logger.Info("reindex complete",
			"indexed", stats.FilesIndexed,
			"removed", stats.FilesRemoved,
			"symbol_delta", stats.SymbolDelta,
			"symbols", stats.Symbols,
			"duration", stats.Duration)
	}
	if r.OnBatch != nil {
		r.OnBatch(files, stats, err)
	}
}
