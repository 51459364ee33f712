package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize scans src once, left to right, and returns its tokens in source order.
func Tokenize(src string) []Token {
	s := &scanner{src: src}
	for s.pos < len(s.src) {
		start := s.pos
		kind := s.next()
		if s.pos <= start {
			// Guarantee forward progress whatever the rules above did.
			_, size := utf8.DecodeRuneInString(s.src[start:])
			s.pos = start + size
			kind = KindPlain
		}
		s.tokens = append(s.tokens, Token{Kind: kind, Text: s.src[start:s.pos]})
	}
	return s.tokens
}

type scanner struct {
	src    string
	pos    int
	tokens []Token
}

func (s *scanner) at(off int) byte {
	if i := s.pos + off; i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

// next consumes one token starting at s.pos and returns its kind.
func (s *scanner) next() Kind {
	c := s.src[s.pos]
	switch {
	case s.hasPrefix("//"):
		return s.lineComment()
	case s.hasPrefix("/*"):
		return s.blockComment()
	case s.hasPrefix("#["), s.hasPrefix("#!["):
		return s.attribute()
	case c == '"':
		return s.quoted(1)
	case s.hasPrefix(`b"`):
		return s.quoted(2)
	}
	if n, ok := s.rawStringStart(); ok {
		return s.rawString(n)
	}
	if c == '\'' {
		if kind, ok := s.quote(); ok {
			return kind
		}
	}
	if isDigit(c) {
		return s.number()
	}
	if r, _ := utf8.DecodeRuneInString(s.src[s.pos:]); isIdentStart(r) {
		return s.identifier()
	}
	for _, op := range threeCharOps {
		if s.hasPrefix(op) {
			s.pos += len(op)
			return KindOperator
		}
	}
	for _, op := range twoCharOps {
		if s.hasPrefix(op) {
			s.pos += len(op)
			return KindOperator
		}
	}
	if s.hasPrefix("::") {
		s.pos += 2
		return KindPunctuation
	}
	for _, op := range []string{"..=", "...", ".."} {
		if s.hasPrefix(op) {
			s.pos += len(op)
			return KindOperator
		}
	}
	return s.single()
}

func (s *scanner) lineComment() Kind {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		s.pos = len(s.src)
	} else {
		s.pos += end
	}
	return KindComment
}

// blockComment tracks nesting; an unterminated comment runs to the end of the buffer.
func (s *scanner) blockComment() Kind {
	depth := 0
	i := s.pos
	for i < len(s.src) {
		switch {
		case strings.HasPrefix(s.src[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(s.src[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				s.pos = i
				return KindComment
			}
		default:
			i++
		}
	}
	s.pos = len(s.src)
	return KindComment
}

// attribute consumes #[...] or #![...] honoring nested brackets and string
// literals. Without a closing bracket the attribute stops at the end of its line.
func (s *scanner) attribute() Kind {
	i := s.pos + 2
	if s.hasPrefix("#![") {
		i = s.pos + 3
	}
	depth := 1
	for i < len(s.src) {
		switch s.src[i] {
		case '"':
			i = skipString(s.src, i)
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				s.pos = i + 1
				return KindAttribute
			}
		}
		i++
	}
	if end := strings.IndexByte(s.src[s.pos:], '\n'); end >= 0 {
		s.pos += end
	} else {
		s.pos = len(s.src)
	}
	return KindAttribute
}

func (s *scanner) quoted(prefix int) Kind {
	s.pos = skipString(s.src, s.pos+prefix-1)
	return KindString
}

// skipString returns the index just past the string literal whose opening
// quote is at i, or len(src) when the literal is unterminated.
func skipString(src string, i int) int {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		}
		i++
	}
	return len(src)
}

// rawStringStart recognizes r"..", r#"..", br"..", br#"..".
func (s *scanner) rawStringStart() (int, bool) {
	i := s.pos
	if s.at(0) == 'b' {
		i++
	}
	if i >= len(s.src) || s.src[i] != 'r' {
		return 0, false
	}
	i++
	for i < len(s.src) && s.src[i] == '#' {
		i++
	}
	if i >= len(s.src) || s.src[i] != '"' {
		return 0, false
	}
	return i - s.pos + 1, true
}

func (s *scanner) rawString(headerLen int) Kind {
	header := s.src[s.pos : s.pos+headerLen]
	hashes := strings.Count(header, "#")
	closing := "\"" + strings.Repeat("#", hashes)
	body := s.pos + headerLen
	if end := strings.Index(s.src[body:], closing); end >= 0 {
		s.pos = body + end + len(closing)
	} else {
		s.pos = len(s.src)
	}
	return KindString
}

// quote disambiguates lifetimes from char literals. It reports false when the
// quote should fall through to the single-character rule.
func (s *scanner) quote() (Kind, bool) {
	rest := s.src[s.pos+1:]
	if rest == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(rest)
	if isIdentStart(r) {
		n := size
		for n < len(rest) {
			r2, sz := utf8.DecodeRuneInString(rest[n:])
			if !isIdentPart(r2) {
				break
			}
			n += sz
		}
		if n >= len(rest) || rest[n] != '\'' {
			s.pos += 1 + n
			return KindLifetime, true
		}
	}
	if rest[0] == '\\' {
		limit := len(rest)
		if limit > 12 {
			limit = 12
		}
		for i := 2; i < limit; i++ {
			if rest[i] == '\n' {
				break
			}
			if rest[i] == '\'' {
				s.pos += 1 + i + 1
				return KindChar, true
			}
		}
		return "", false
	}
	if r != '\n' && size < len(rest) && rest[size] == '\'' {
		s.pos += 1 + size + 1
		return KindChar, true
	}
	return "", false
}

func (s *scanner) number() Kind {
	i := s.pos
	n := len(s.src)
	if s.src[i] == '0' && i+1 < n && strings.IndexByte("xob", s.src[i+1]) >= 0 {
		hex := s.src[i+1] == 'x'
		i += 2
		for i < n && (isDigit(s.src[i]) || s.src[i] == '_' || (hex && isHexLetter(s.src[i]))) {
			i++
		}
	} else {
		for i < n && (isDigit(s.src[i]) || s.src[i] == '_') {
			i++
		}
		if i+1 < n && s.src[i] == '.' && isDigit(s.src[i+1]) {
			i++
			for i < n && (isDigit(s.src[i]) || s.src[i] == '_') {
				i++
			}
		}
		if i < n && (s.src[i] == 'e' || s.src[i] == 'E') {
			j := i + 1
			if j < n && (s.src[j] == '+' || s.src[j] == '-') {
				j++
			}
			if j < n && isDigit(s.src[j]) {
				i = j
				for i < n && (isDigit(s.src[i]) || s.src[i] == '_') {
					i++
				}
			}
		}
	}
	// Type suffix such as u8, i64, f32, usize.
	if i < n && isASCIILetter(s.src[i]) {
		for i < n && (isASCIILetter(s.src[i]) || isDigit(s.src[i]) || s.src[i] == '_') {
			i++
		}
	}
	s.pos = i
	return KindNumber
}

func (s *scanner) identifier() Kind {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	word := s.src[start:s.pos]

	if s.at(0) == '!' && s.at(1) != '=' && !declarationKeywords[word] && !controlFlowKeywords[word] {
		s.pos++
		return KindMacro
	}
	switch {
	case selfWords[word]:
		return KindSelf
	case declarationKeywords[word]:
		return KindKeyword
	case controlFlowKeywords[word]:
		return KindControlFlow
	case builtinTypes[word]:
		return KindTypeName
	case builtinNames[word]:
		return KindBuiltin
	case s.at(0) == '(':
		return KindCallable
	case isScreaming(word):
		return KindConstant
	case unicode.IsUpper([]rune(word)[0]):
		return KindTypeName
	}
	return KindPlain
}

// single is the catch-all: one rune, or one run of horizontal whitespace.
func (s *scanner) single() Kind {
	c := s.src[s.pos]
	if c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v' {
		for s.pos < len(s.src) && strings.IndexByte(" \t\r\f\v", s.src[s.pos]) >= 0 {
			s.pos++
		}
		return KindPlain
	}
	_, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	switch {
	case c == '\n':
		return KindPlain
	case strings.IndexByte(operatorChars, c) >= 0:
		return KindOperator
	case c < utf8.RuneSelf && unicode.IsPunct(rune(c)):
		return KindPunctuation
	case strings.IndexByte("$`", c) >= 0:
		return KindPunctuation
	}
	return KindPlain
}

func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isHexLetter(c byte) bool   { return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isScreaming reports SCREAMING_CASE words of at least two characters.
func isScreaming(word string) bool {
	if len(word) < 2 {
		return false
	}
	letters := 0
	for _, r := range word {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
		case r == '_' || (r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return letters > 0
}
