// Package xref builds the cross-reference index: for every symbol name, the
// lines of the buffer on which that name appears as a whole word.
package xref

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Build maps each distinct symbol name to the sorted, de-duplicated 0-based
// lines mentioning it. Declaration lines are always included, so every name
// has at least one entry.
func Build(text string, syms []symbols.Symbol) map[string][]int {
	lines := strings.Split(text, "\n")
	refs := make(map[string][]int)

	decls := make(map[string][]int)
	var names []string
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		if _, ok := decls[s.Name]; !ok {
			names = append(names, s.Name)
		}
		decls[s.Name] = append(decls[s.Name], s.Line)
	}

	for _, name := range names {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		found := append([]int(nil), decls[name]...)
		for i, line := range lines {
			if strings.Contains(line, name) && re.MatchString(line) {
				found = append(found, i)
			}
		}
		refs[name] = dedupe(found)
	}
	return refs
}

func dedupe(xs []int) []int {
	sort.Ints(xs)
	out := xs[:0]
	for _, x := range xs {
		if len(out) == 0 || out[len(out)-1] != x {
			out = append(out, x)
		}
	}
	return out
}

// Uses returns the reference lines of sym that fall outside its own extent.
func Uses(refs map[string][]int, sym symbols.Symbol) []int {
	out := []int{}
	for _, l := range refs[sym.Name] {
		if l < sym.Line || l > sym.EndLine {
			out = append(out, l)
		}
	}
	return out
}
