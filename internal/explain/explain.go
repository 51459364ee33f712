// Package explain derives plain-language commentary for extracted symbols.
//
// Every sentence comes from ordered rule tables keyed on a symbol's kind,
// name, attributes and shape. The first matching rule wins and a generic
// sentence built from the kind and member counts covers everything else, so
// an explanation is always produced. Explanations are approximate by nature;
// extraction never depends on them.
package explain

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// MaxRelationships caps the relationship list of a single symbol.
const MaxRelationships = 6

// Explain derives the commentary for sym. all is the full symbol list of the
// same buffer and is only read.
func Explain(sym symbols.Symbol, all []symbols.Symbol) symbols.Explanation {
	return symbols.Explanation{
		Why:           why(sym),
		How:           how(sym),
		Pattern:       designPattern(sym),
		MemoryNote:    memoryNote(sym),
		SafetyNote:    safetyNote(sym),
		Relationships: relationships(sym, all),
	}
}

// All returns a copy of syms with the explanation fields of every symbol
// filled in. The input slice is not modified.
func All(syms []symbols.Symbol) []symbols.Symbol {
	out := make([]symbols.Symbol, len(syms))
	for i, s := range syms {
		out[i] = s.WithExplanation(Explain(s, syms))
	}
	return out
}

// humanize turns CamelCase and snake_case identifiers into lower-case words.
func humanize(name string) string {
	var words []string
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' }) {
		words = append(words, splitCamel(part)...)
	}
	if len(words) == 0 {
		return strings.ToLower(name)
	}
	return strings.ToLower(strings.Join(words, " "))
}

func splitCamel(s string) []string {
	runes := []rune(s)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		lowerToUpper := unicode.IsLower(prev) && unicode.IsUpper(cur)
		acronymEnd := unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if lowerToUpper || acronymEnd {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

// containsWord reports whether word occurs in text bounded by non-identifier
// characters, so "Id" does not match inside "Valid".
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(word)
		if (i == 0 || !isIdentByte(text[i-1])) && (end == len(text) || !isIdentByte(text[end])) {
			return true
		}
		from = i + 1
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// list renders up to four names, then a count of the rest.
func list(names []string) string {
	const shown = 4
	switch {
	case len(names) == 0:
		return ""
	case len(names) == 1:
		return names[0]
	case len(names) <= shown:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
	return strings.Join(names[:shown], ", ") + " and " + strconv.Itoa(len(names)-shown) + " more"
}

func fieldNames(s symbols.Symbol) []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

func methodNames(s symbols.Symbol) []string {
	names := make([]string, 0, len(s.Methods))
	for _, m := range s.Methods {
		names = append(names, m.Name)
	}
	return names
}

func fieldless(s symbols.Symbol) bool {
	for _, v := range s.Variants {
		if v.Data != "" {
			return false
		}
	}
	return true
}

// hasAttr reports whether s carries an attribute with the given name.
func hasAttr(s symbols.Symbol, name string) bool {
	for _, a := range s.Attributes {
		if parseAttr(a).name == name {
			return true
		}
	}
	return false
}
