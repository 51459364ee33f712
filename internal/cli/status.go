package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/storage"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

var (
	statusJSON     bool
	cleanQuietFlag bool
)

var statusCmd = &cobra.Command{
	Use:   "status [dir]",
	Short: "Show project index statistics",
	Long: `Show what the project index holds.

Displays:
- Index database location
- File, symbol, reference and relationship counts
- Symbols per kind
- When the last index run started and how it ended`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Delete the project index to force a full reindex",
	Long: `Clean removes the SQLite index database of the project. The next
'ferrite index' run analyzes every file again.

The configuration file (.ferrite/config.yml) is preserved.

Examples:
  ferrite clean
  ferrite clean --quiet
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	Database string         `json:"database"`
	Branch   string         `json:"branch,omitempty"`
	Stats    *storage.Stats `json:"stats"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadProject(firstArg(args))
	if err != nil {
		return err
	}
	db, err := p.openIndex(false)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := storage.NewReader(db).Stats()
	if err != nil {
		return err
	}

	branch := gitOps.CurrentBranch(p.root)
	out := cmd.OutOrStdout()
	if statusJSON {
		return writeJSON(out, statusOutput{Database: p.dbPath(), Branch: branch, Stats: stats})
	}
	writeStatus(out, p.dbPath(), branch, stats, time.Now())
	return nil
}

func writeStatus(w io.Writer, dbPath, branch string, stats *storage.Stats, now time.Time) {
	fmt.Fprintln(w, "Index Status:")
	fmt.Fprintf(w, "  Database:      %s\n", dbPath)
	if branch != "" {
		fmt.Fprintf(w, "  Branch:        %s\n", branch)
	}
	fmt.Fprintf(w, "  Files:         %s\n", formatNumber(stats.Files))
	fmt.Fprintf(w, "  Symbols:       %s\n", formatNumber(stats.Symbols))
	fmt.Fprintf(w, "  References:    %s\n", formatNumber(stats.References))
	fmt.Fprintf(w, "  Relationships: %s\n", formatNumber(stats.Relationships))

	if len(stats.ByKind) > 0 {
		kinds := make([]symbols.Kind, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Symbols by kind:")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-12s %s\n", k.Label(), formatNumber(stats.ByKind[k]))
		}
	}

	fmt.Fprintln(w)
	run := stats.LastRun
	if run == nil {
		fmt.Fprintln(w, "Last run: never")
		return
	}
	fmt.Fprintf(w, "Last run: %s\n", formatTimeSince(run.StartedAt, now))
	switch {
	case run.Error != "":
		fmt.Fprintf(w, "  Status: failed (%s)\n", run.Error)
	case run.FinishedAt == nil:
		fmt.Fprintln(w, "  Status: in progress")
	default:
		fmt.Fprintf(w, "  Status: %s indexed, %s unchanged, %s removed in %s\n",
			formatNumber(run.FilesIndexed), formatNumber(run.FilesSkipped), formatNumber(run.FilesRemoved),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
}

// formatTimeSince formats how long ago t was, relative to now.
func formatTimeSince(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "min") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	}
	return plural(int(d.Hours()/24), "day") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := loadProject(firstArg(args))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	path := p.dbPath()

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if !cleanQuietFlag {
			fmt.Fprintln(out, "No index found for this project")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat index: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove index: %w", err)
	}
	// SQLite sidecar files; absent unless a writer crashed.
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		_ = os.Remove(path + suffix)
	}

	if !cleanQuietFlag {
		fmt.Fprintf(out, "✓ Cleaned index (~%.1f MB)\n", float64(info.Size())/(1024*1024))
		fmt.Fprintln(out, "Next 'ferrite index' will perform a full reindex")
	}
	return nil
}
