package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// ErrUnknownNode is returned when a query names a node that is not in the graph.
var ErrUnknownNode = errors.New("unknown node")

// Graph is a read-only relationship graph.
type Graph struct {
	g        graph.Graph[string, *Node]
	edges    map[[2]string]*Edge
	edgeList []*Edge
}

// Node returns the node with id, or ErrUnknownNode.
func (gr *Graph) Node(id string) (*Node, error) {
	n, err := gr.g.Vertex(id)
	if errors.Is(err, graph.ErrVertexNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return n, err
}

// Nodes returns every node sorted by ID.
func (gr *Graph) Nodes() []*Node {
	adj, err := gr.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	out := make([]*Node, 0, len(adj))
	for id := range adj {
		if n, err := gr.g.Vertex(id); err == nil {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge sorted by source then target.
func (gr *Graph) Edges() []*Edge {
	return gr.edgeList
}

// Related returns the nodes within depth hops of id in either direction,
// nearest first. Each node is reported once, at the depth it was first
// reached; id itself is never reported. Depth is clamped to [1, MaxDepth].
func (gr *Graph) Related(id string, depth int) ([]Neighbor, error) {
	if _, err := gr.Node(id); err != nil {
		return nil, err
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	succ, err := gr.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	pred, err := gr.g.PredecessorMap()
	if err != nil {
		return nil, err
	}

	out := []Neighbor{}
	visited := map[string]bool{id: true}
	frontier := []string{id}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []Neighbor
		for _, from := range frontier {
			for to := range succ[from] {
				next = append(next, gr.neighbor(from, to, from, to, Outgoing, d))
			}
			for to := range pred[from] {
				next = append(next, gr.neighbor(from, to, to, from, Incoming, d))
			}
		}
		sort.Slice(next, func(i, j int) bool {
			a, b := next[i], next[j]
			if a.Node.ID != b.Node.ID {
				return a.Node.ID < b.Node.ID
			}
			if a.Direction != b.Direction {
				return a.Direction > b.Direction
			}
			return a.Via < b.Via
		})

		frontier = frontier[:0]
		for _, n := range next {
			if visited[n.Node.ID] {
				continue
			}
			visited[n.Node.ID] = true
			out = append(out, n)
			frontier = append(frontier, n.Node.ID)
		}
	}
	return out, nil
}

func (gr *Graph) neighbor(via, to, src, dst string, dir Direction, depth int) Neighbor {
	n, _ := gr.g.Vertex(to)
	rel := ""
	if e := gr.edges[[2]string{src, dst}]; e != nil && len(e.Relations) > 0 {
		rel = e.Relations[0]
	}
	return Neighbor{Node: n, Via: via, Relation: rel, Direction: dir, Depth: depth}
}

// Cycles returns the strongly connected components with more than one node.
// Members of each cycle are sorted, and cycles are ordered by first member.
func (gr *Graph) Cycles() ([][]string, error) {
	sccs, err := graph.StronglyConnectedComponents(gr.g)
	if err != nil {
		return nil, fmt.Errorf("failed to find cycles: %w", err)
	}
	out := [][]string{}
	for _, c := range sccs {
		if len(c) < 2 {
			continue
		}
		sort.Strings(c)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}
