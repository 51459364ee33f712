package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/indexer"
)

var quietFlag bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Build or update the project index",
	Long: `Index analyzes every source file of the project and stores declarations,
explanations, references and relationships in a SQLite database
(.ferrite/index.db by default).

Runs are incremental: files whose content hash is unchanged are skipped and
files that disappeared are removed from the index.

Examples:
  # Index the current directory
  ferrite index

  # Index another project without progress output
  ferrite index --quiet ../other-crate
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context(), cmd.ErrOrStderr(), "indexing")
	defer cancel()

	p, err := loadProject(firstArg(args))
	if err != nil {
		return err
	}
	_, err = p.index(ctx, NewCLIProgressReporter(cmd.OutOrStdout(), quietFlag))
	return err
}

// index runs one full pass over the project.
func (p *project) index(ctx context.Context, progress indexer.ProgressReporter) (*indexer.Stats, error) {
	idx, closeFn, err := p.newIndexer(progress)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	stats, err := idx.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}
	return stats, nil
}

// newIndexer wires discovery, storage and a cached analyzer into an Indexer.
// closeFn releases the database and the cache.
func (p *project) newIndexer(progress indexer.ProgressReporter) (*indexer.Indexer, func(), error) {
	disc, err := p.discovery()
	if err != nil {
		return nil, nil, err
	}
	db, err := p.openIndex(true)
	if err != nil {
		return nil, nil, err
	}
	analyzer, memo, err := p.analyzer()
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	idx := indexer.New(disc, db, indexer.Options{
		Workers:  p.cfg.Index.Workers,
		Analyzer: analyzer,
		Logger:   p.logger.With("component", "indexer"),
		Progress: progress,
	})
	closeFn := func() {
		memo.Close()
		db.Close()
	}
	return idx, closeFn, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
