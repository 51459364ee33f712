package explain

import (
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// relationships links s to the other symbols of the same buffer. Bindings
// relate to the contract and target they join, data types and contracts to
// the bindings that mention them, and every symbol to the in-buffer names its
// types and signatures mention. The result is de-duplicated, capped at
// MaxRelationships and never nil.
func relationships(s symbols.Symbol, all []symbols.Symbol) []string {
	rel := newRelations()

	names := make(map[string]bool)
	for _, o := range all {
		if o.Kind != symbols.KindContractBinding && o.Kind != symbols.KindImport && o.Name != "" {
			names[o.Name] = true
		}
	}

	switch s.Kind {
	case symbols.KindContractBinding:
		if s.TraitImpl != "" {
			if c := symbols.BaseName(s.TraitImpl); names[c] {
				rel.add("implements " + c)
			}
		}
		if names[s.Name] {
			rel.add("adds behavior to " + s.Name)
		}

	case symbols.KindTypeRecord, symbols.KindSumType, symbols.KindTaggedUnion:
		for _, o := range all {
			if o.Kind != symbols.KindContractBinding || o.Name != s.Name {
				continue
			}
			if o.TraitImpl != "" {
				rel.add("implements " + symbols.BaseName(o.TraitImpl))
			} else {
				rel.add("has inherent impl")
			}
		}

	case symbols.KindCapabilityContract:
		for _, o := range all {
			if o.Kind == symbols.KindContractBinding && o.TraitImpl != "" && symbols.BaseName(o.TraitImpl) == s.Name {
				rel.add("implemented by " + o.Name)
			}
		}
		for _, st := range s.Supertraits {
			if b := symbols.BaseName(st); names[b] {
				rel.add("requires " + b)
			}
		}
	}

	texts := mentionTexts(s)
	for _, o := range all {
		if o.Kind == symbols.KindContractBinding || o.Kind == symbols.KindImport || o.Name == "" || o.Name == s.Name {
			continue
		}
		if anyWord(texts, o.Name) {
			rel.add("uses " + o.Name)
		}
	}
	return rel.list()
}

// mentionTexts are the type and signature strings scanned for other names.
func mentionTexts(s symbols.Symbol) []string {
	out := typeTexts(s)
	for _, m := range s.Methods {
		out = append(out, m.Signature)
	}
	for _, p := range s.Params {
		out = append(out, p.Type)
	}
	if s.ReturnType != "" {
		out = append(out, s.ReturnType)
	}
	out = append(out, s.Supertraits...)
	if s.Kind == symbols.KindContractBinding && s.Target != "" {
		out = append(out, s.Target)
	}
	return out
}

type relations struct {
	seen  map[string]bool
	items []string
}

func newRelations() *relations {
	return &relations{seen: make(map[string]bool), items: []string{}}
}

func (r *relations) add(item string) {
	if r.seen[item] || len(r.items) >= MaxRelationships {
		return
	}
	r.seen[item] = true
	r.items = append(r.items, item)
}

func (r *relations) list() []string { return r.items }
