// Package extractor recovers top-level declarations from source text with
// line-level heuristics instead of a grammar.
//
// Extraction never fails. Lines matching no declaration form are skipped,
// unbalanced input yields best-effort extents, and anything unexpected inside
// a body is ignored rather than reported.
package extractor

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/ferrite/internal/lexer"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Extract returns the top-level declarations of text in source order. Line
// numbers are 0-based indices into strings.Split(text, "\n").
func Extract(text string) []symbols.Symbol {
	x := newExtraction(text, lexer.Tokenize(text))

	var (
		out  []symbols.Symbol
		docs []string
	)
	for i := 0; i < len(x.lines); i++ {
		orig := strings.TrimSpace(x.lines[i])
		switch {
		case orig == "":
			continue
		case isDocLine(orig):
			docs = append(docs, docText(orig))
			continue
		case x.attrLine[i] && strings.TrimSpace(x.masked[i]) == "":
			continue
		}

		doc := strings.Join(docs, "\n")
		docs = nil

		sym, ok := x.declaration(i)
		if !ok {
			continue
		}
		sym.Doc = doc
		out = append(out, sym)
		i = sym.EndLine
	}
	return out
}

// extraction holds three aligned views of the buffer. code and masked have the
// same byte length as lines, line for line, so offsets found in one view slice
// the others.
type extraction struct {
	lines  []string // original text
	code   []string // comments and attributes blanked
	masked []string // code with string and char literals blanked as well

	attrs    map[int][]string // outer attributes by the line they start on
	attrLine map[int]bool     // lines covered by any attribute
}

func newExtraction(text string, tokens []lexer.Token) *extraction {
	x := &extraction{
		lines:    strings.Split(text, "\n"),
		attrs:    make(map[int][]string),
		attrLine: make(map[int]bool),
	}

	var code, masked strings.Builder
	line := 0
	for _, tok := range tokens {
		n := strings.Count(tok.Text, "\n")
		switch tok.Kind {
		case lexer.KindComment:
			blank(&code, tok.Text)
			blank(&masked, tok.Text)
		case lexer.KindAttribute:
			blank(&code, tok.Text)
			blank(&masked, tok.Text)
			if strings.HasPrefix(tok.Text, "#[") {
				x.attrs[line] = append(x.attrs[line], collapse(tok.Text))
			}
			for l := line; l <= line+n; l++ {
				x.attrLine[l] = true
			}
		case lexer.KindString, lexer.KindChar:
			code.WriteString(tok.Text)
			blank(&masked, tok.Text)
		default:
			code.WriteString(tok.Text)
			masked.WriteString(tok.Text)
		}
		line += n
	}
	x.code = strings.Split(code.String(), "\n")
	x.masked = strings.Split(masked.String(), "\n")
	return x
}

// blank writes s with every byte except newlines replaced by a space.
func blank(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
}

// region is a contiguous run of lines joined with newlines. Offsets are
// relative to the first line.
type region struct {
	first  int
	code   string
	masked string
}

func (x *extraction) region(start, end int) region {
	return region{
		first:  start,
		code:   strings.Join(x.code[start:end+1], "\n"),
		masked: strings.Join(x.masked[start:end+1], "\n"),
	}
}

// lineOf maps a region offset back to its buffer line.
func (r region) lineOf(off int) int {
	if off > len(r.masked) {
		off = len(r.masked)
	}
	return r.first + strings.Count(r.masked[:off], "\n")
}

// extent decides whether the declaration at start is terminated by ';' or by
// a brace-delimited body and returns its last line.
func (x *extraction) extent(start int) int {
	depth := 0
	for i := start; i < len(x.masked); i++ {
		for _, c := range []byte(x.masked[i]) {
			switch c {
			case '(', '[':
				depth++
			case ')', ']':
				if depth > 0 {
					depth--
				}
			case '{':
				if depth == 0 {
					return FindBlockEnd(x.masked, start)
				}
			case ';':
				if depth == 0 {
					return i
				}
			}
		}
	}
	return FindBlockEnd(x.masked, start)
}

// attributes collects the outer attributes on the declaration line and on the
// attribute and doc-comment lines directly above it.
func (x *extraction) attributes(line int) []string {
	first := line
	for j := line - 1; j >= 0; j-- {
		orig := strings.TrimSpace(x.lines[j])
		if x.attrLine[j] && strings.TrimSpace(x.masked[j]) == "" {
			first = j
			continue
		}
		if isDocLine(orig) {
			continue
		}
		break
	}

	var out []string
	for j := first; j <= line; j++ {
		out = append(out, x.attrs[j]...)
	}
	return out
}

// head is a declaration head with its qualifiers removed.
type head struct {
	vis    symbols.Visibility
	unsafe bool
	async  bool
	rest   string
}

var visibilityRe = regexp.MustCompile(`^pub\s*\(\s*(crate|self|super|in\s+[^)]*?)\s*\)\s*|^pub\s+`)

// parseHead strips visibility and modifier qualifiers. rest is always a
// suffix of s so callers can recover offsets from its length.
func parseHead(s string) head {
	h := head{vis: symbols.VisibilityPrivate}
	h.vis, s = stripVisibility(s)

	for {
		word, after := firstWord(s)
		switch word {
		case "unsafe":
			h.unsafe = true
		case "async":
			h.async = true
		case "default":
			if next, _ := firstWord(after); next == "" {
				h.rest = s
				return h
			}
		case "const", "extern":
			// const and extern only qualify functions; const NAME and
			// extern crate are declarations of their own.
			switch next, _ := firstWord(after); next {
			case "fn", "unsafe", "async", "extern", "const":
			default:
				h.rest = s
				return h
			}
		default:
			h.rest = s
			return h
		}
		s = after
	}
}

func stripVisibility(s string) (symbols.Visibility, string) {
	m := visibilityRe.FindStringSubmatch(s)
	if m == nil {
		return symbols.VisibilityPrivate, s
	}
	rest := s[len(m[0]):]
	scope := m[1]
	switch {
	case scope == "":
		return symbols.VisibilityPublic, rest
	case scope == "crate":
		return symbols.VisibilityCrate, rest
	case scope == "self":
		return symbols.VisibilityPrivate, rest
	default:
		return symbols.VisibilityParent, rest
	}
}

// firstWord splits the leading identifier off s. Blanked string literals
// after extern leave only whitespace, which is skipped.
func firstWord(s string) (string, string) {
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	if i == 0 || i == len(s) || (s[i] != ' ' && s[i] != '\t' && s[i] != '\n') {
		return s[:i], s[i:]
	}
	return s[:i], strings.TrimLeft(s[i:], " \t\n")
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// decl is a matched declaration head.
type decl struct {
	head
	re    *regexp.Regexp
	line  int
	lead  int   // offset of the declaration head in the region
	off   int   // offset of head.rest in the region
	match []int // submatch indices relative to head.rest
	r     region
}

// at returns the region offset just past the matched keyword pattern.
func (d *decl) at() int { return d.off + d.match[1] }

type pattern struct {
	kind  symbols.Kind
	re    *regexp.Regexp
	block bool // the head may open a brace-delimited body
	fill  func(x *extraction, d *decl, sym *symbols.Symbol) bool
}

const ident = `[A-Za-z_]\w*`

// patterns are tried in order and the first match wins.
var patterns = []pattern{
	{symbols.KindTypeRecord, regexp.MustCompile(`^struct\s+(?P<name>` + ident + `)`), true, fillRecord},
	{symbols.KindSumType, regexp.MustCompile(`^enum\s+(?P<name>` + ident + `)`), true, fillEnum},
	{symbols.KindCapabilityContract, regexp.MustCompile(`^trait\s+(?P<name>` + ident + `)`), true, fillTrait},
	{symbols.KindContractBinding, regexp.MustCompile(`^impl\b`), true, fillImpl},
	{symbols.KindCallable, regexp.MustCompile(`^fn\s+(?P<name>` + ident + `)`), true, fillCallable},
	{symbols.KindConstant, regexp.MustCompile(`^const\s+(?P<name>` + ident + `)\s*:`), false, fillValue},
	{symbols.KindGlobalMutable, regexp.MustCompile(`^static\s+(?P<mut>mut\s+)?(?P<name>` + ident + `)\s*:`), false, fillStatic},
	{symbols.KindTypeAlias, regexp.MustCompile(`^type\s+(?P<name>` + ident + `)`), false, fillAlias},
	{symbols.KindNamespace, regexp.MustCompile(`^mod\s+(?P<name>` + ident + `)`), true, nil},
	{symbols.KindTaggedUnion, regexp.MustCompile(`^union\s+(?P<name>` + ident + `)`), true, fillUnion},
	{symbols.KindMacroDef, regexp.MustCompile(`^macro_rules!\s*(?P<name>` + ident + `)`), true, nil},
	{symbols.KindImport, regexp.MustCompile(`^use\s+\S`), false, fillUse},
	{symbols.KindImport, regexp.MustCompile(`^extern\s+crate\s+(?P<name>` + ident + `)(?:\s+as\s+(?P<alias>` + ident + `))?`), false, fillExternCrate},
}

// declaration matches line i against the declaration patterns.
func (x *extraction) declaration(i int) (symbols.Symbol, bool) {
	mline := x.masked[i]
	lead := len(mline) - len(strings.TrimLeft(mline, " \t"))
	h := parseHead(mline[lead:])
	if h.rest == "" {
		return symbols.Symbol{}, false
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatchIndex(h.rest)
		if m == nil {
			continue
		}

		end := x.extent(i)
		d := &decl{
			head:  h,
			re:    p.re,
			line:  i,
			lead:  lead,
			off:   len(mline) - len(h.rest),
			match: m,
			r:     x.region(i, end),
		}
		sym := symbols.Symbol{
			Kind:       p.kind,
			Visibility: h.vis,
			Line:       i,
			EndLine:    end,
			IsUnsafe:   h.unsafe,
			IsAsync:    h.async,
			Attributes: x.attributes(i),
		}
		sym.Name = d.group("name")

		stop := headEnd(d.r.masked, d.off, p.block)
		sym.Signature = collapse(d.r.code[lead:stop])

		if p.fill != nil && !p.fill(x, d, &sym) {
			continue
		}
		if sym.Name == "" {
			continue
		}
		return sym, true
	}
	return symbols.Symbol{}, false
}

// group returns the named submatch of the head pattern, or "".
func (d *decl) group(name string) string {
	idx := d.re.SubexpIndex(name)
	if idx < 0 || d.match[2*idx] < 0 {
		return ""
	}
	return d.rest[d.match[2*idx]:d.match[2*idx+1]]
}

// headEnd returns the offset of the first ';' outside brackets at or after
// from, or of the first such '{' when stopAtBrace is set. It returns len(s)
// when neither appears.
func headEnd(s string, from int, stopAtBrace bool) int {
	depth := 0
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '{':
			if depth == 0 && stopAtBrace {
				return i
			}
			depth++
		case ';':
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

func isDocLine(trimmed string) bool {
	return (strings.HasPrefix(trimmed, "///") && !strings.HasPrefix(trimmed, "////")) ||
		strings.HasPrefix(trimmed, "//!")
}

func docText(trimmed string) string {
	return strings.TrimSpace(trimmed[3:])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
