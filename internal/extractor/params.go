package extractor

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

var (
	fnNameRe    = regexp.MustCompile(`\bfn\s+` + ident)
	refSelfRe   = regexp.MustCompile(`^&\s*(?:'` + ident + `\s+)?(mut\s+)?self$`)
	typedSelfRe = regexp.MustCompile(`^(mut\s+)?self\s*:\s*(.+)$`)
	useAliasRe  = regexp.MustCompile(`\s+as\s+(` + ident + `)$`)
	identOnlyRe = regexp.MustCompile(`^` + ident + `$`)
	genericEqRe = regexp.MustCompile(`^\s*(<.*?>)?\s*=`)
)

func fillCallable(x *extraction, d *decl, sym *symbols.Symbol) bool {
	h := collapse(d.r.masked[d.off:headEnd(d.r.masked, d.off, true)])
	sym.Params = params(h)
	sym.ReturnType = returnType(h)
	return true
}

func fillValue(x *extraction, d *decl, sym *symbols.Symbol) bool {
	sym.ValueType = valueType(collapse(d.r.masked[d.at():headEnd(d.r.masked, d.at(), false)]))
	return true
}

func fillStatic(x *extraction, d *decl, sym *symbols.Symbol) bool {
	sym.IsMut = d.group("mut") != ""
	return fillValue(x, d, sym)
}

func fillAlias(x *extraction, d *decl, sym *symbols.Symbol) bool {
	rest := d.r.masked[d.at():headEnd(d.r.masked, d.at(), false)]
	if loc := genericEqRe.FindStringIndex(rest); loc != nil {
		sym.AliasOf = collapse(rest[loc[1]:])
	}
	return true
}

// fillUse names an import after what it brings into scope: the alias, the
// last path segment, or for group and glob imports the module they reach into.
func fillUse(x *extraction, d *decl, sym *symbols.Symbol) bool {
	path := collapse(d.r.code[d.off+len("use") : headEnd(d.r.masked, d.off, false)])
	sym.Target = path

	if m := useAliasRe.FindStringSubmatch(path); m != nil && !strings.HasSuffix(path, "}") {
		sym.Name = m[1]
		return true
	}
	switch {
	case strings.Contains(path, "{"):
		path = path[:strings.Index(path, "{")]
	case strings.HasSuffix(path, "*"):
		path = strings.TrimSuffix(path, "*")
	}
	path = strings.TrimSuffix(strings.TrimSpace(path), "::")
	if i := strings.LastIndex(path, "::"); i >= 0 {
		path = path[i+2:]
	}
	path = strings.TrimSpace(path)
	if !identOnlyRe.MatchString(path) {
		return false
	}
	sym.Name = path
	return true
}

func fillExternCrate(x *extraction, d *decl, sym *symbols.Symbol) bool {
	if alias := d.group("alias"); alias != "" {
		sym.Name = alias
	}
	return true
}

// valueType returns the declared type of `: Type = value` text.
func valueType(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
	if i := indexTopLevel(s, '='); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// paramSpan locates the parenthesized parameter list of a fn head.
func paramSpan(h string) (int, int, bool) {
	loc := fnNameRe.FindStringIndex(h)
	if loc == nil {
		return 0, 0, false
	}
	j := skipSpace(h, skipGenerics(h, skipSpace(h, loc[1])))
	if j >= len(h) || h[j] != '(' {
		return 0, 0, false
	}
	end := matchClose(h, j)
	if end < 0 {
		return j, len(h), true
	}
	return j, end, true
}

// returnType returns the text after "->" in a fn head, without any where clause.
func returnType(h string) string {
	_, end, ok := paramSpan(h)
	if !ok || end >= len(h) {
		return ""
	}
	rest := strings.TrimSpace(h[end+1:])
	if !strings.HasPrefix(rest, "->") {
		return ""
	}
	rest = rest[2:]
	if loc := whereRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return strings.TrimSpace(rest)
}

func params(h string) []symbols.Param {
	open, end, ok := paramSpan(h)
	if !ok {
		return nil
	}
	var out []symbols.Param
	for _, p := range splitTopLevel(h[open+1:end], ',') {
		if p = collapse(p); p != "" {
			out = append(out, parseParam(p))
		}
	}
	return out
}

func parseParam(p string) symbols.Param {
	switch p {
	case "self":
		return symbols.Param{Name: "self", Type: "Self", IsSelf: true, Receiver: symbols.ReceiverOwned}
	case "mut self":
		return symbols.Param{Name: "self", Type: "Self", IsSelf: true, IsMut: true, Receiver: symbols.ReceiverOwned}
	}
	if m := refSelfRe.FindStringSubmatch(p); m != nil {
		if m[1] != "" {
			return symbols.Param{Name: "self", Type: "&mut Self", IsSelf: true, Receiver: symbols.ReceiverExclusive}
		}
		return symbols.Param{Name: "self", Type: "&Self", IsSelf: true, Receiver: symbols.ReceiverShared}
	}
	if m := typedSelfRe.FindStringSubmatch(p); m != nil {
		param := symbols.Param{Name: "self", Type: m[2], IsSelf: true, IsMut: m[1] != "", Receiver: symbols.ReceiverOwned}
		switch {
		case strings.HasPrefix(m[2], "&mut"):
			param.Receiver = symbols.ReceiverExclusive
		case strings.HasPrefix(m[2], "&"):
			param.Receiver = symbols.ReceiverShared
		}
		return param
	}

	i := indexTopLevel(p, ':')
	if i < 0 {
		return symbols.Param{Name: p}
	}
	param := symbols.Param{Name: strings.TrimSpace(p[:i]), Type: strings.TrimSpace(p[i+1:])}
	if rest, ok := strings.CutPrefix(param.Name, "mut "); ok {
		param.IsMut = true
		param.Name = strings.TrimSpace(rest)
	}
	return param
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// skipGenerics returns the offset past a balanced <...> group starting at i,
// or i when there is none.
func skipGenerics(s string, i int) int {
	if i >= len(s) || s[i] != '<' {
		return i
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '<':
			depth++
		case '>':
			if j > 0 && s[j-1] == '-' {
				continue
			}
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

// matchClose returns the offset of the bracket closing the one at open, or -1.
func matchClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitSpans splits s[b.start:b.end] at sep outside (), [], {} and <>.
func splitSpans(s string, b span, sep byte) []span {
	var (
		out    []span
		depth  int
		angles int
	)
	start := b.start
	for i := b.start; i < b.end; i++ {
		c := s[i]
		switch {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == '<' && i+1 < b.end && s[i+1] == '<':
			i++
		case c == '<':
			angles++
		case c == '>' && i > 0 && (s[i-1] == '-' || s[i-1] == '='):
		case c == '>':
			if angles > 0 {
				angles--
			}
		case c == sep && depth == 0 && angles == 0:
			out = append(out, span{start, i})
			start = i + 1
		}
	}
	out = append(out, span{start, b.end})
	return out
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	for _, sp := range splitSpans(s, span{0, len(s)}, sep) {
		out = append(out, s[sp.start:sp.end])
	}
	return out
}

// indexTopLevel returns the first c outside brackets, skipping "::" and the
// comparison and arrow operators that contain '='.
func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
			continue
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			continue
		case '>':
			if i > 0 && (s[i-1] == '-' || s[i-1] == '=') {
				continue
			}
			if depth > 0 {
				depth--
			}
			continue
		}
		if s[i] != c || depth > 0 {
			continue
		}
		switch c {
		case ':':
			if (i+1 < len(s) && s[i+1] == ':') || (i > 0 && s[i-1] == ':') {
				continue
			}
		case '=':
			if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
				continue
			}
			if i > 0 && strings.IndexByte("=!<>", s[i-1]) >= 0 {
				continue
			}
		}
		return i
	}
	return -1
}
