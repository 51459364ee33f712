package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/search"
	"github.com/mvp-joe/ferrite/internal/storage"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

var (
	searchKindFlag   string
	searchFileFlag   string
	searchLimitFlag  int
	searchFormatFlag string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed declarations and their explanations",
	Long: `Search runs a full-text query over every declaration in the project index:
names, signatures, doc comments and the derived explanations.

The query uses Bleve query-string syntax, so fields can be targeted
(name:Inventory, why:constructor) and terms required or excluded (+store -test).

Examples:
  ferrite search inventory
  ferrite search --kind callable "restock"
  ferrite search --file "src/net/*" "name:Conn*"
`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchKindFlag, "kind", "k", "", "Only return declarations of this kind (e.g. callable, type-record)")
	searchCmd.Flags().StringVar(&searchFileFlag, "file", "", "Only return declarations from files matching this wildcard")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", search.DefaultLimit, "Maximum number of results (max 100)")
	searchCmd.Flags().StringVarP(&searchFormatFlag, "format", "f", formatText, "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind := symbols.Kind(searchKindFlag)
	if kind != "" && !kind.Valid() {
		return fmt.Errorf("unknown kind %q", searchKindFlag)
	}
	p, err := loadProject("")
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd, searchFormatFlag, p.cfg.Output.Format, formatText, formatJSON)
	if err != nil {
		return err
	}

	db, err := p.openIndex(false)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	searcher, err := search.FromIndex(ctx, storage.NewReader(db))
	if err != nil {
		return err
	}
	defer searcher.Close()

	results, err := searcher.Search(ctx, args[0], search.Options{
		Kind:     kind,
		FilePath: searchFileFlag,
		Limit:    searchLimitFlag,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(out, results)
	}
	writeResults(out, results)
	return nil
}

func writeResults(w io.Writer, results []search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matches.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s:%d  %s %s  (%.2f)\n", r.FilePath, r.Line+1, r.Kind.Label(), r.Name, r.Score)
		if r.Why != "" {
			fmt.Fprintf(w, "    %s\n", r.Why)
		}
	}
}
