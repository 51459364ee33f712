package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/ferrite/internal/indexer"
)

// CLIProgressReporter implements indexer.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out     io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(changed, unchanged, deleted int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Found %s changed, %s unchanged and %s deleted files\n",
		formatNumber(changed), formatNumber(unchanged), formatNumber(deleted))
	if changed == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(changed,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Indexing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(filePath string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintf(c.out, "✓ Indexing complete: %s symbols in %.1fs\n",
		formatNumber(stats.Symbols), stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Indexed:   %s files\n", formatNumber(stats.FilesIndexed))
	fmt.Fprintf(c.out, "  Unchanged: %s files\n", formatNumber(stats.FilesUnchanged))
	if stats.FilesRemoved > 0 {
		fmt.Fprintf(c.out, "  Removed:   %s files\n", formatNumber(stats.FilesRemoved))
	}
	if stats.FilesFailed > 0 {
		fmt.Fprintf(c.out, "  Failed:    %s files\n", formatNumber(stats.FilesFailed))
	}
	if stats.SymbolDelta != 0 {
		fmt.Fprintf(c.out, "  Symbols:   %+d\n", stats.SymbolDelta)
	}
}

var _ indexer.ProgressReporter = (*CLIProgressReporter)(nil)

// formatNumber formats a number with thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}
	var result []byte
	for i := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}
