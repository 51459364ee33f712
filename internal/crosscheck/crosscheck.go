// Package crosscheck compares the heuristic extractor against a real
// tree-sitter grammar. It reports top-level declarations one side found and
// the other did not, which points at heuristic gaps in unusual layouts.
package crosscheck

import (
	"errors"
	"fmt"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/extractor"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Decl is a top-level declaration as either side sees it. Line is 0-based.
type Decl struct {
	Name string       `json:"name"`
	Kind symbols.Kind `json:"kind"`
	Line int          `json:"line"`
}

func (d Decl) String() string {
	return fmt.Sprintf("%s %s (line %d)", d.Kind.Label(), d.Name, d.Line)
}

// Report is the outcome of one comparison. Imports are not compared.
type Report struct {
	Grammar   []Decl `json:"grammar"`
	Extracted []Decl `json:"extracted"`
	// Missing declarations were parsed by the grammar but not extracted.
	Missing []Decl `json:"missing"`
	// Extra declarations were extracted but are not items to the grammar.
	Extra []Decl `json:"extra"`
	// SyntaxErrors is set when the grammar could not parse the whole buffer,
	// in which case its side of the comparison is incomplete.
	SyntaxErrors bool `json:"syntax_errors"`
}

// OK reports whether both sides agree.
func (r *Report) OK() bool { return len(r.Missing) == 0 && len(r.Extra) == 0 }

// itemKinds maps tree-sitter-rust item nodes to symbol kinds.
var itemKinds = map[string]symbols.Kind{
	"struct_item":      symbols.KindTypeRecord,
	"enum_item":        symbols.KindSumType,
	"trait_item":       symbols.KindCapabilityContract,
	"impl_item":        symbols.KindContractBinding,
	"function_item":    symbols.KindCallable,
	"const_item":       symbols.KindConstant,
	"static_item":      symbols.KindGlobalMutable,
	"type_item":        symbols.KindTypeAlias,
	"mod_item":         symbols.KindNamespace,
	"union_item":       symbols.KindTaggedUnion,
	"macro_definition": symbols.KindMacroDef,
}

// Check parses text with both the extractor and the grammar.
func Check(text string) (*Report, error) {
	text = analysis.Normalize(text)

	grammar, syntaxErrors, err := Parse(text)
	if err != nil {
		return nil, err
	}
	extracted := []Decl{}
	for _, s := range extractor.Extract(text) {
		if s.Kind == symbols.KindImport {
			continue
		}
		extracted = append(extracted, Decl{Name: s.Name, Kind: s.Kind, Line: s.Line})
	}

	r := &Report{
		Grammar:      grammar,
		Extracted:    extracted,
		SyntaxErrors: syntaxErrors,
	}
	r.Missing = difference(grammar, extracted)
	r.Extra = difference(extracted, grammar)
	return r, nil
}

// Parse returns the top-level items of text as the tree-sitter grammar sees
// them, in source order, and whether the parse contained errors.
func Parse(text string) ([]Decl, bool, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(rust.Language())); err != nil {
		return nil, false, fmt.Errorf("failed to load rust grammar: %w", err)
	}

	source := []byte(text)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, false, errors.New("tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	out := []Decl{}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		n := root.NamedChild(i)
		if n == nil {
			continue
		}
		kind, ok := itemKinds[n.Kind()]
		if !ok {
			continue
		}
		name := itemName(n, kind, source)
		if name == "" {
			continue
		}
		out = append(out, Decl{Name: name, Kind: kind, Line: int(n.StartPosition().Row)})
	}
	return out, root.HasError(), nil
}

func itemName(n *sitter.Node, kind symbols.Kind, source []byte) string {
	field := "name"
	if kind == symbols.KindContractBinding {
		field = "type"
	}
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	text := c.Utf8Text(source)
	if kind == symbols.KindContractBinding {
		return symbols.BaseName(text)
	}
	return text
}

// difference returns the members of a with no counterpart in b, matching
// each b member at most once.
func difference(a, b []Decl) []Decl {
	avail := make(map[Decl]int, len(b))
	for _, d := range b {
		avail[d]++
	}
	out := []Decl{}
	for _, d := range a {
		if avail[d] > 0 {
			avail[d]--
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}
