// Package graph turns symbol relationships into a directed graph that can be
// traversed, checked for cycles and rendered as Mermaid.
package graph

import "github.com/mvp-joe/ferrite/internal/symbols"

// Query defaults and limits
const (
	DefaultDepth = 1
	MaxDepth     = 10
)

// Node is one named symbol. Bindings share the name of the type they attach
// to, so a type and its impl blocks collapse into a single node.
type Node struct {
	ID   string       `json:"id"`
	Kind symbols.Kind `json:"kind"`
	File string       `json:"file,omitempty"`
	Line int          `json:"line"`
}

// Edge is a relationship between two nodes. Relations holds every relation
// label seen between the pair, in first-seen order.
type Edge struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Relations []string `json:"relations"`
}

// Direction tells whether a neighbor was reached along or against edges.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
)

// Neighbor is one result of a Related query.
type Neighbor struct {
	Node      *Node     `json:"node"`
	Via       string    `json:"via"`
	Relation  string    `json:"relation"`
	Direction Direction `json:"direction"`
	Depth     int       `json:"depth"`
}
