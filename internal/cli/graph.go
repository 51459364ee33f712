package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ferrite/internal/graph"
	"github.com/mvp-joe/ferrite/internal/storage"
)

var (
	graphFormatFlag string
	graphSymbolFlag string
	graphDepthFlag  int
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file|-]",
	Short: "Show how declarations relate to each other",
	Long: `Graph builds a directed graph from declaration relationships: which types
implement which contracts, which declarations use which others.

With a file, the graph covers that file only. Without one, it covers the
whole project index built by 'ferrite index'.

Examples:
  # Mermaid flowchart of one file
  ferrite graph src/lib.rs

  # Nodes, edges and cycles as text
  ferrite graph --format list

  # Everything within two hops of Inventory
  ferrite graph --symbol Inventory --depth 2 src/lib.rs
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVarP(&graphFormatFlag, "format", "f", formatMermaid, "Output format: mermaid or list")
	graphCmd.Flags().StringVarP(&graphSymbolFlag, "symbol", "s", "", "List the neighborhood of this declaration")
	graphCmd.Flags().IntVarP(&graphDepthFlag, "depth", "d", graph.DefaultDepth, "Neighborhood depth (1-10)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	if graphFormatFlag != formatMermaid && graphFormatFlag != formatList {
		return fmt.Errorf("unsupported format %q (want mermaid or list)", graphFormatFlag)
	}
	p, err := loadProject("")
	if err != nil {
		return err
	}

	var g *graph.Graph
	if len(args) == 1 {
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
		if g, err = graph.FromSymbols(filepath.ToSlash(args[0]), res.Symbols); err != nil {
			return err
		}
	} else {
		db, err := p.openIndex(false)
		if err != nil {
			return err
		}
		defer db.Close()
		if g, err = graph.FromIndex(storage.NewReader(db)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if graphSymbolFlag != "" {
		related, err := g.Related(graphSymbolFlag, graphDepthFlag)
		if err != nil {
			return err
		}
		writeRelated(out, graphSymbolFlag, related)
		return nil
	}
	if graphFormatFlag == formatMermaid {
		fmt.Fprint(out, g.Mermaid())
		return nil
	}
	cycles, err := g.Cycles()
	if err != nil {
		return err
	}
	writeGraphList(out, g, cycles)
	return nil
}

func writeRelated(w io.Writer, center string, related []graph.Neighbor) {
	if len(related) == 0 {
		fmt.Fprintf(w, "%s has no related declarations.\n", center)
		return
	}
	for _, n := range related {
		arrow := "->"
		if n.Direction == graph.Incoming {
			arrow = "<-"
		}
		fmt.Fprintf(w, "%d  %s %s %s  (%s %s)\n", n.Depth, n.Via, arrow, n.Node.ID, n.Relation, n.Node.Kind.Label())
	}
}

func writeGraphList(w io.Writer, g *graph.Graph, cycles [][]string) {
	fmt.Fprintln(w, "Nodes:")
	for _, n := range g.Nodes() {
		where := fmt.Sprintf("line %d", n.Line+1)
		if n.File != "" {
			where = fmt.Sprintf("%s:%d", n.File, n.Line+1)
		}
		fmt.Fprintf(w, "  %-24s %-12s %s\n", n.ID, n.Kind.Label(), where)
	}
	fmt.Fprintln(w, "Edges:")
	for _, e := range g.Edges() {
		fmt.Fprintf(w, "  %s -> %s  [%s]\n", e.From, e.To, strings.Join(e.Relations, ", "))
	}
	if len(cycles) > 0 {
		fmt.Fprintln(w, "Cycles:")
		for _, c := range cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(c, " -> "))
		}
	}
}
