package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/ferrite/internal/storage"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// builder accumulates nodes and relations before the graph is assembled.
type builder struct {
	nodes map[string]*Node
	order []string
	rels  map[[2]string][]string
}

func newBuilder() *builder {
	return &builder{
		nodes: make(map[string]*Node),
		rels:  make(map[[2]string][]string),
	}
}

// addSymbol registers s as a node. A non-binding symbol wins over a binding
// of the same name, and the first of each wins otherwise.
func (b *builder) addSymbol(file string, s symbols.Symbol) {
	if s.Name == "" || s.Kind == symbols.KindImport {
		return
	}
	n, ok := b.nodes[s.Name]
	if !ok {
		b.nodes[s.Name] = &Node{ID: s.Name, Kind: s.Kind, File: file, Line: s.Line}
		b.order = append(b.order, s.Name)
		return
	}
	if n.Kind == symbols.KindContractBinding && s.Kind != symbols.KindContractBinding {
		*n = Node{ID: s.Name, Kind: s.Kind, File: file, Line: s.Line}
	}
}

func (b *builder) addRelation(from, relation, to string) {
	if from == to {
		return
	}
	key := [2]string{from, to}
	for _, r := range b.rels[key] {
		if r == relation {
			return
		}
	}
	b.rels[key] = append(b.rels[key], relation)
}

// build assembles the graph. Relations whose endpoints are not symbols,
// such as external contracts, are dropped.
func (b *builder) build() (*Graph, error) {
	g := graph.New(func(n *Node) string { return n.ID }, graph.Directed())
	for _, id := range b.order {
		if err := g.AddVertex(b.nodes[id]); err != nil {
			return nil, fmt.Errorf("failed to add node %s: %w", id, err)
		}
	}

	keys := make([][2]string, 0, len(b.rels))
	for k := range b.rels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	out := &Graph{g: g, edges: make(map[[2]string]*Edge)}
	for _, k := range keys {
		if b.nodes[k[0]] == nil || b.nodes[k[1]] == nil {
			continue
		}
		rels := b.rels[k]
		if err := g.AddEdge(k[0], k[1], graph.EdgeAttribute("label", strings.Join(rels, ", "))); err != nil {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", k[0], k[1], err)
		}
		e := &Edge{From: k[0], To: k[1], Relations: rels}
		out.edges[k] = e
		out.edgeList = append(out.edgeList, e)
	}
	return out, nil
}

// FromSymbols builds the graph of one analyzed buffer from the relationship
// lists the explanation engine attached to each symbol.
func FromSymbols(file string, syms []symbols.Symbol) (*Graph, error) {
	b := newBuilder()
	for _, s := range syms {
		b.addSymbol(file, s)
	}
	for _, s := range syms {
		if s.Kind == symbols.KindImport {
			continue
		}
		for _, r := range s.Relationships {
			if rel, to, ok := storage.ParseRelationship(r); ok {
				b.addRelation(s.Name, rel, to)
			}
		}
	}
	return b.build()
}

// FromIndex builds the graph of a whole indexed project. Names are joined
// across files, so two files defining the same name share one node.
func FromIndex(r *storage.Reader) (*Graph, error) {
	stored, err := r.Symbols(storage.SymbolFilter{})
	if err != nil {
		return nil, err
	}
	rels, err := r.Relationships()
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	for _, s := range stored {
		b.addSymbol(s.FilePath, s.Symbol)
	}
	for _, rel := range rels {
		b.addRelation(rel.FromName, rel.Relation, rel.ToName)
	}
	return b.build()
}
