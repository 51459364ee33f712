package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

var (
	fieldRe   = regexp.MustCompile(`^(` + ident + `)\s*:\s*(.+)$`)
	variantRe = regexp.MustCompile(`^(` + ident + `)\s*(.*)$`)
	methodRe  = regexp.MustCompile(`^fn\s+(` + ident + `)`)
	assocRe   = regexp.MustCompile(`^type\s+(` + ident + `)(?:\s*<[^=]*>)?(?:\s*:[^=]*)?(?:\s*=\s*(.+))?$`)
	whereRe   = regexp.MustCompile(`\bwhere\b`)
)

// span is a half-open [start, end) range of region offsets.
type span struct{ start, end int }

// body returns the contents between the opener at open and its matching
// closer. A body left open by truncated input runs to the end of the region.
func (r region) body(open int) span {
	end := matchClose(r.masked, open)
	if end < 0 {
		end = len(r.masked)
	}
	return span{open + 1, end}
}

// braceBody finds the body opened after the declaration head, if any.
func (d *decl) braceBody() (span, bool) {
	h := headEnd(d.r.masked, d.at(), true)
	if h >= len(d.r.masked) || d.r.masked[h] != '{' {
		return span{}, false
	}
	return d.r.body(h), true
}

func fillRecord(x *extraction, d *decl, sym *symbols.Symbol) bool {
	j := skipSpace(d.r.masked, d.at())
	j = skipSpace(d.r.masked, skipGenerics(d.r.masked, j))
	if j < len(d.r.masked) && d.r.masked[j] == '(' {
		sym.IsTuple = true
		sym.Fields = x.tupleFields(d.r, d.r.body(j))
		return true
	}
	if b, ok := d.braceBody(); ok {
		sym.Fields = x.namedFields(d.r, b)
	}
	return true
}

func fillUnion(x *extraction, d *decl, sym *symbols.Symbol) bool {
	if b, ok := d.braceBody(); ok {
		sym.Fields = x.namedFields(d.r, b)
	}
	return true
}

func fillEnum(x *extraction, d *decl, sym *symbols.Symbol) bool {
	b, ok := d.braceBody()
	if !ok {
		return true
	}
	items := splitSpans(d.r.masked, b, ',')
	for i, it := range items {
		text := collapse(d.r.masked[it.start:it.end])
		m := variantRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := symbols.Variant{Name: m[1]}
		rest := m[2]
		if rest != "" && (rest[0] == '(' || rest[0] == '{') {
			if end := matchClose(rest, 0); end >= 0 {
				v.Data = rest[:end+1]
				rest = strings.TrimSpace(rest[end+1:])
			} else {
				v.Data = rest
				rest = ""
			}
		}
		if strings.HasPrefix(rest, "=") {
			v.Discriminant = strings.TrimSpace(rest[1:])
		}
		v.Comment = x.memberComment(d.r, items, i, b)
		sym.Variants = append(sym.Variants, v)
	}
	return true
}

func fillTrait(x *extraction, d *decl, sym *symbols.Symbol) bool {
	j := skipSpace(d.r.masked, skipGenerics(d.r.masked, d.at()))
	if j < len(d.r.masked) && d.r.masked[j] == ':' {
		bounds := collapse(d.r.masked[j+1 : headEnd(d.r.masked, j, true)])
		if loc := whereRe.FindStringIndex(bounds); loc != nil {
			bounds = bounds[:loc[0]]
		}
		for _, b := range splitTopLevel(bounds, '+') {
			b = strings.TrimSpace(b)
			if b == "" || b[0] == '\'' || b[0] == '?' {
				continue
			}
			sym.Supertraits = append(sym.Supertraits, b)
		}
	}
	if b, ok := d.braceBody(); ok {
		sym.Methods, sym.AssociatedTypes = x.members(d.r, b)
		for i := range sym.Methods {
			sym.Methods[i].Visibility = sym.Visibility
		}
	}
	return true
}

func fillImpl(x *extraction, d *decl, sym *symbols.Symbol) bool {
	s := collapse(d.r.masked[d.at():headEnd(d.r.masked, d.at(), true)])
	if strings.HasPrefix(s, "<") {
		s = strings.TrimSpace(s[skipGenerics(s, 0):])
	}
	if loc := whereRe.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[:loc[0]])
	}
	trait, target := splitFor(s)
	sym.TraitImpl = trait
	sym.Target = target
	sym.Name = symbols.BaseName(target)
	if sym.Name == "" {
		return false
	}
	if b, ok := d.braceBody(); ok {
		sym.Methods, sym.AssociatedTypes = x.members(d.r, b)
	}
	return true
}

// splitFor splits an impl head at its top-level "for" keyword.
func splitFor(s string) (string, string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			if depth > 0 {
				depth--
			}
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ' ':
			if depth == 0 && strings.HasPrefix(s[i:], " for ") {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+5:])
			}
		}
	}
	return "", strings.TrimSpace(s)
}

// namedFields parses `[vis] name: Type` items of a struct or union body.
func (x *extraction) namedFields(r region, b span) []symbols.Field {
	var fields []symbols.Field
	items := splitSpans(r.masked, b, ',')
	for i, it := range items {
		vis, rest := stripVisibility(collapse(r.masked[it.start:it.end]))
		m := fieldRe.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		fields = append(fields, symbols.Field{
			Name:       m[1],
			Type:       m[2],
			Visibility: vis,
			Comment:    x.memberComment(r, items, i, b),
		})
	}
	return fields
}

// tupleFields parses the positional fields of a tuple struct; they are named
// by index.
func (x *extraction) tupleFields(r region, b span) []symbols.Field {
	var fields []symbols.Field
	items := splitSpans(r.masked, b, ',')
	for i, it := range items {
		vis, typ := stripVisibility(collapse(r.masked[it.start:it.end]))
		if typ == "" {
			continue
		}
		fields = append(fields, symbols.Field{
			Name:       strconv.Itoa(len(fields)),
			Type:       typ,
			Visibility: vis,
			Comment:    x.memberComment(r, items, i, b),
		})
	}
	return fields
}

// members scans the depth-0 items of a trait or impl body for methods and
// associated types.
func (x *extraction) members(r region, b span) ([]symbols.Method, []symbols.AssociatedType) {
	var (
		methods []symbols.Method
		assoc   []symbols.AssociatedType
	)
	items := statements(r.masked, b)
	for i, it := range items {
		start := skipSpace(r.masked, it.start)
		if start >= it.end {
			continue
		}
		stop := headEnd(r.masked[:it.end], start, true)
		text := strings.TrimSuffix(collapse(r.masked[start:stop]), ";")
		h := parseHead(text)

		if m := methodRe.FindStringSubmatch(h.rest); m != nil {
			sig := strings.TrimSuffix(collapse(r.code[start:stop]), ";")
			methods = append(methods, symbols.Method{
				Name:       m[1],
				Signature:  strings.TrimSpace(sig),
				ReturnType: returnType(h.rest),
				IsUnsafe:   h.unsafe,
				IsAsync:    h.async,
				HasBody:    stop < it.end && r.masked[stop] == '{',
				Visibility: h.vis,
				Comment:    x.memberComment(r, items, i, b),
			})
			continue
		}
		if m := assocRe.FindStringSubmatch(strings.TrimSpace(h.rest)); m != nil {
			assoc = append(assoc, symbols.AssociatedType{Name: m[1], Value: strings.TrimSpace(m[2])})
		}
	}
	return methods, assoc
}

// statements splits a body into depth-0 items, each ending at a ';' or at
// the '}' that closes its own block.
func statements(s string, b span) []span {
	var (
		items  []span
		parens int
		braces int
	)
	start := b.start
	for i := b.start; i < b.end; i++ {
		switch s[i] {
		case '(', '[':
			parens++
		case ')', ']':
			if parens > 0 {
				parens--
			}
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
				if braces == 0 && parens == 0 {
					items = append(items, span{start, i + 1})
					start = i + 1
				}
			}
		case ';':
			if braces == 0 && parens == 0 {
				items = append(items, span{start, i + 1})
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:b.end]) != "" {
		items = append(items, span{start, b.end})
	}
	return items
}

// memberComment returns the doc comment above item i, or else a trailing //
// comment on its line when no later item starts on that line.
func (x *extraction) memberComment(r region, items []span, i int, b span) string {
	first := skipSpace(r.masked, items[i].start)
	line := r.lineOf(first)
	openLine := r.lineOf(b.start - 1)
	closeLine := r.lineOf(b.end)

	var docs []string
	for l := line - 1; l > openLine; l-- {
		t := strings.TrimSpace(x.lines[l])
		if isDocLine(t) {
			docs = append([]string{docText(t)}, docs...)
			continue
		}
		if x.attrLine[l] && strings.TrimSpace(x.masked[l]) == "" {
			continue
		}
		break
	}
	if len(docs) > 0 {
		return strings.Join(docs, " ")
	}

	if line <= openLine || line >= closeLine {
		return ""
	}
	if i+1 < len(items) {
		next := skipSpace(r.masked, items[i+1].start)
		if next < items[i+1].end && r.lineOf(next) == line {
			return ""
		}
	}
	return lineComment(x.lines[line])
}
