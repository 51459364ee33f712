package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/indexer"
	"github.com/mvp-joe/ferrite/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index the project and keep the index current as files change",
	Long: `Watch runs a full index pass, then watches the project for changes to
source files. Bursts of changes are debounced (watch.debounce_ms) and only the
touched files are re-analyzed. Each batch prints how many symbols were added
or removed.

Press Ctrl+C to stop.

Examples:
  ferrite watch
  ferrite watch ../other-crate
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context(), cmd.ErrOrStderr(), "watch")
	defer cancel()

	p, err := loadProject(firstArg(args))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	progress := NewCLIProgressReporter(out, false)
	idx, closeFn, err := p.newIndexer(progress)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := idx.Index(ctx); err != nil {
		return fmt.Errorf("initial index failed: %w", err)
	}
	// Later batches are reported by OnBatch, one line each.
	progress.quiet = true

	disc, err := p.discovery()
	if err != nil {
		return err
	}
	fw, err := watcher.NewFileWatcher(disc, p.cfg.Watch.Debounce(), p.logger.With("component", "watcher"))
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	r := watcher.NewReindexer(fw, idx)
	r.OnBatch = func(files []string, stats *indexer.Stats, err error) {
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", strings.Join(files, ", "), err)
			return
		}
		fmt.Fprintf(out, "↻ %s: %d indexed, %d removed, %+d symbols\n",
			strings.Join(files, ", "), stats.FilesIndexed, stats.FilesRemoved, stats.SymbolDelta)
	}
	if err := r.Start(ctx); err != nil {
		fw.Stop()
		return err
	}
	defer r.Stop()

	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", p.root)
	<-ctx.Done()
	return nil
}
