package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/lexer"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

var (
	analyzeFormatFlag string
	analyzeTokensFlag bool
	tokensLineFlag    int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|->",
	Short: "Analyze a source file and list its declarations",
	Long: `Analyze runs the full pipeline over one file: tokens, declarations with
their extents and explanations, and the cross-reference index.

Use - to read from standard input. JSON output carries 0-based line numbers;
text output shows 1-based editor lines.

Examples:
  # Summarize a file
  ferrite analyze src/lib.rs

  # Full JSON result including the token stream
  ferrite analyze --format json --tokens src/lib.rs

  # Analyze piped source
  cat src/main.rs | ferrite analyze -
`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens <file|->",
	Short: "Print the classified token stream line by line",
	Long: `Tokens prints every token of a file as kind:"text", grouped by source
line. Whitespace-only tokens are left out.

Examples:
  ferrite tokens src/lib.rs
  ferrite tokens --line 12 src/lib.rs
`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFormatFlag, "format", "f", formatText, "Output format: text or json")
	analyzeCmd.Flags().BoolVar(&analyzeTokensFlag, "tokens", false, "Include the token stream")

	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().IntVarP(&tokensLineFlag, "line", "l", 0, "Only print this 1-based line")
}

// analyzeOutput is the JSON shape of the analyze command.
type analyzeOutput struct {
	File       string           `json:"file"`
	Hash       string           `json:"hash"`
	LineCount  int              `json:"line_count"`
	Symbols    []symbols.Symbol `json:"symbols"`
	References map[string][]int `json:"references"`
	Tokens     []lexer.Token    `json:"tokens,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := loadProject("")
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd, analyzeFormatFlag, p.cfg.Output.Format, formatText, formatJSON)
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

	out := cmd.OutOrStdout()
	if format == formatJSON {
		o := analyzeOutput{
			File:       args[0],
			Hash:       res.Hash,
			LineCount:  res.LineCount,
			Symbols:    res.Symbols,
			References: res.Refs,
		}
		if analyzeTokensFlag {
			o.Tokens = res.Tokens
		}
		return writeJSON(out, o)
	}

	fmt.Fprintf(out, "%s: %d lines, %d declarations\n\n", args[0], res.LineCount, len(res.Symbols))
	writeSummary(out, res.Symbols)
	if analyzeTokensFlag {
		fmt.Fprintln(out)
		writeTokenLines(out, lexer.Lines(res.Tokens), -1)
	}
	return nil
}

func runTokens(cmd *cobra.Command, args []string) error {
	text, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	lines := lexer.Lines(lexer.Tokenize(analysis.Normalize(text)))

	only := -1
	if cmd.Flags().Changed("line") {
		if tokensLineFlag < 1 || tokensLineFlag > len(lines) {
			return fmt.Errorf("line %d out of range (file has %d lines)", tokensLineFlag, len(lines))
		}
		only = tokensLineFlag - 1
	}
	writeTokenLines(cmd.OutOrStdout(), lines, only)
	return nil
}
