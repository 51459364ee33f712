package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/symbols"
	"github.com/mvp-joe/ferrite/internal/xref"
)

var (
	explainFormatFlag string
	refsFormatFlag    string
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <file|-> [symbol]",
	Short: "Explain the declarations of a file",
	Long: `Explain prints a panel per declaration: why it exists, how it works, any
recognized design pattern, memory and safety notes, related declarations and
the lines that use it.

With a symbol name, only declarations with that name are shown. A type and
its impl blocks share a name, so all of them are printed.

Examples:
  ferrite explain src/lib.rs
  ferrite explain src/lib.rs Inventory
  ferrite explain --format json src/lib.rs Status
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExplain,
}

// refsCmd represents the refs command
var refsCmd = &cobra.Command{
	Use:   "refs <file|-> <symbol>",
	Short: "List the lines of a file that mention a declared name",
	Long: `Refs prints every line of the file on which the declared name appears as a
whole word, including the declaration line itself.

Examples:
  ferrite refs src/lib.rs Item
`,
	Args: cobra.ExactArgs(2),
	RunE: runRefs,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringVarP(&explainFormatFlag, "format", "f", formatText, "Output format: text or json")

	rootCmd.AddCommand(refsCmd)
	refsCmd.Flags().StringVarP(&refsFormatFlag, "format", "f", formatText, "Output format: text or json")
}

// explainedSymbol is a symbol with the 0-based lines that use it outside its
// own extent.
type explainedSymbol struct {
	symbols.Symbol
	Uses []int `json:"uses"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	p, err := loadProject("")
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd, explainFormatFlag, p.cfg.Output.Format, formatText, formatJSON)
	if err != nil {
		return err
	}
	text, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	analyzer, memo, err := p.analyzer()
	if err != nil {
		return err
	}
	defer memo.Close()
	res := analyzer.Analyze(text)

	syms := res.Symbols
	if len(args) == 2 {
		if syms, err = analysis.Find(res, args[1]); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
	}

	explained := make([]explainedSymbol, 0, len(syms))
	for _, s := range syms {
		explained = append(explained, explainedSymbol{Symbol: s, Uses: xref.Uses(res.Refs, s)})
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(out, explained)
	}
	if len(explained) == 0 {
		fmt.Fprintln(out, "No declarations found.")
		return nil
	}
	for _, e := range explained {
		writePanel(out, e.Symbol, e.Uses)
	}
	return nil
}

// refLine is one line mentioning a name.
type refLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

func runRefs(cmd *cobra.Command, args []string) error {
	p, err := loadProject("")
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd, refsFormatFlag, p.cfg.Output.Format, formatText, formatJSON)
	if err != nil {
		return err
	}
	text, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	res := analysis.Analyze(text)
	lines, ok := res.Refs[args[1]]
	if !ok {
		return fmt.Errorf("%s: %w: %s", args[0], analysis.ErrSymbolNotFound, args[1])
	}

	src := analysis.Lines(text)
	refs := make([]refLine, 0, len(lines))
	for _, l := range lines {
		refs = append(refs, refLine{Line: l, Text: src[l]})
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(out, refs)
	}
	for _, r := range refs {
		fmt.Fprintf(out, "%4d | %s\n", r.Line+1, r.Text)
	}
	return nil
}
