package graph

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Mermaid renders the graph as a Mermaid flowchart. Nodes are labeled with
// their name and kind, and edges with their relations.
func (gr *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	ids := make(map[string]string)
	for i, n := range gr.Nodes() {
		ids[n.ID] = fmt.Sprintf("n%d", i)
		fmt.Fprintf(&sb, "    %s%s\n", ids[n.ID], shape(n))
	}
	for _, e := range gr.Edges() {
		fmt.Fprintf(&sb, "    %s -->|%s| %s\n", ids[e.From], escape(strings.Join(e.Relations, ", ")), ids[e.To])
	}
	return sb.String()
}

func shape(n *Node) string {
	label := escape(fmt.Sprintf("%s<br/>%s", n.ID, n.Kind.Label()))
	switch n.Kind {
	case symbols.KindCapabilityContract:
		return "{{\"" + label + "\"}}"
	case symbols.KindCallable:
		return "([\"" + label + "\"])"
	case symbols.KindSumType, symbols.KindTaggedUnion:
		return "[/\"" + label + "\"/]"
	}
	return "[\"" + label + "\"]"
}

func escape(s string) string {
	return strings.NewReplacer(`"`, "#quot;", "|", "#124;").Replace(s)
}
