package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/lexer"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatMermaid = "mermaid"
	formatList    = "list"
)

// outputFormat returns the --format flag when given, otherwise the configured
// default, and checks it is one of allowed.
func outputFormat(cmd *cobra.Command, flag, configured string, allowed ...string) (string, error) {
	f := configured
	if cmd.Flags().Changed("format") || f == "" {
		f = flag
	}
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want %s)", f, strings.Join(allowed, " or "))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// lineRange prints a 0-based extent as 1-based editor lines.
func lineRange(s symbols.Symbol) string {
	if s.EndLine == s.Line {
		return fmt.Sprintf("line %d", s.Line+1)
	}
	return fmt.Sprintf("lines %d-%d", s.Line+1, s.EndLine+1)
}

// writeSummary prints one line per symbol.
func writeSummary(w io.Writer, syms []symbols.Symbol) {
	if len(syms) == 0 {
		fmt.Fprintln(w, "No declarations found.")
		return
	}
	for _, s := range syms {
		fmt.Fprintf(w, "%-12s %-24s %s\n", s.Kind.Label(), s.Name, lineRange(s))
		if s.WhyItExists != "" {
			fmt.Fprintf(w, "             %s\n", s.WhyItExists)
		}
	}
}

// writePanel prints the full explanation of one symbol. uses are 0-based
// lines outside the symbol's extent.
func writePanel(w io.Writer, s symbols.Symbol, uses []int) {
	title := fmt.Sprintf("%s %s", s.Kind.Label(), s.Name)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("─", len([]rune(title))))

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-10s %s\n", label+":", value)
		}
	}
	row("where", fmt.Sprintf("%s, %s", lineRange(s), s.Visibility))
	row("signature", s.Signature)
	row("doc", strings.ReplaceAll(s.Doc, "\n", " "))
	row("why", s.WhyItExists)
	row("how", s.HowItWorks)
	row("pattern", s.DesignPattern)
	row("memory", s.MemoryNote)
	row("safety", s.SafetyNote)
	row("related", strings.Join(s.Relationships, "; "))
	if len(uses) > 0 {
		row("used on", joinLines(uses))
	}

	switch {
	case len(s.Fields) > 0:
		fmt.Fprintln(w, "  fields:")
		for _, f := range s.Fields {
			fmt.Fprintf(w, "    %-16s %s\n", f.Name, f.Type)
		}
	case len(s.Variants) > 0:
		fmt.Fprintln(w, "  variants:")
		for _, v := range s.Variants {
			fmt.Fprintf(w, "    %s%s\n", v.Name, v.Data)
		}
	}
	if len(s.Methods) > 0 {
		fmt.Fprintln(w, "  methods:")
		for _, m := range s.Methods {
			sig := m.Signature
			if sig == "" {
				sig = m.Name
			}
			fmt.Fprintf(w, "    %s\n", sig)
		}
	}
	fmt.Fprintln(w)
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprint(l + 1)
	}
	return strings.Join(parts, ", ")
}

// writeTokenLines prints tokens projected onto lines, one source line per
// output line, each token as kind:"text". Plain whitespace is omitted.
func writeTokenLines(w io.Writer, lines [][]lexer.Token, only int) {
	for i, line := range lines {
		if only >= 0 && i != only {
			continue
		}
		fmt.Fprintf(w, "%4d |", i+1)
		for _, tok := range line {
			if tok.Kind == lexer.KindPlain && strings.TrimSpace(tok.Text) == "" {
				continue
			}
			fmt.Fprintf(w, " %s:%q", tok.Kind, tok.Text)
		}
		fmt.Fprintln(w)
	}
}
