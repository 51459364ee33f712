package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/crosscheck"
)

// ErrMismatch is returned by verify when the extractor and the grammar
// disagree.
var ErrMismatch = errors.New("extractor and grammar disagree")

var verifyFormatFlag string

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file|->",
	Short: "Cross-check extracted declarations against the tree-sitter grammar",
	Long: `Verify parses a file with the tree-sitter Rust grammar and compares its
top-level items with what the heuristic extractor found. Declarations only
one side reports are listed; the command fails when there are any.

Imports are not compared. When the grammar hits syntax errors its side of
the comparison may be incomplete and a warning is printed.

Examples:
  ferrite verify src/lib.rs
`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&verifyFormatFlag, "format", "f", formatText, "Output format: text or json")
}

func runVerify(cmd *cobra.Command, args []string) error {
	p, err := loadProject("")
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd, verifyFormatFlag, p.cfg.Output.Format, formatText, formatJSON)
	if err != nil {
		return err
	}
	text, err := readSource(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	report, err := crosscheck.Check(text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		writeReport(out, args[0], report)
	}
	if !report.OK() {
		return fmt.Errorf("%s: %w (%d missing, %d extra)", args[0], ErrMismatch, len(report.Missing), len(report.Extra))
	}
	return nil
}

func writeReport(w io.Writer, name string, r *crosscheck.Report) {
	if r.SyntaxErrors {
		fmt.Fprintln(w, "warning: the grammar reported syntax errors, results may be incomplete")
	}
	if r.OK() {
		fmt.Fprintf(w, "✓ %s: %d declarations agree\n", name, len(r.Grammar))
		return
	}
	for _, d := range r.Missing {
		fmt.Fprintf(w, "missing  %s\n", d)
	}
	for _, d := range r.Extra {
		fmt.Fprintf(w, "extra    %s\n", d)
	}
}
