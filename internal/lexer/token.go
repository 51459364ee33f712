// Package lexer turns raw source text into a flat, classified token stream.
//
// The scanner is total: every input, including invalid UTF-8 and truncated
// constructs, produces a token stream whose concatenated text is exactly the
// input. Unterminated comments and strings extend to the end of the buffer.
package lexer

import "strings"

// Kind classifies a lexical token.
type Kind string

const (
	KindKeyword     Kind = "keyword"
	KindControlFlow Kind = "control-flow-keyword"
	KindTypeName    Kind = "type-name"
	KindBuiltin     Kind = "builtin-name"
	KindString      Kind = "string-literal"
	KindChar        Kind = "char-literal"
	KindComment     Kind = "comment"
	KindNumber      Kind = "number-literal"
	KindMacro       Kind = "macro-invocation"
	KindAttribute   Kind = "attribute"
	KindLifetime    Kind = "lifetime-marker"
	KindOperator    Kind = "operator"
	KindPunctuation Kind = "punctuation"
	KindCallable    Kind = "callable-name"
	KindConstant    Kind = "constant-name"
	KindSelf        Kind = "self-reference"
	KindPlain       Kind = "plain"
)

// Token is one lexical unit. Tokens are never mutated after creation.
type Token struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Join concatenates token text. For any input s, Join(Tokenize(s)) == s.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}

// Lines projects the token stream onto source lines. Tokens spanning several
// lines (block comments, multi-line strings) are split at each newline; the
// newline itself is the boundary and appears on neither side.
func Lines(tokens []Token) [][]Token {
	lines := [][]Token{nil}
	for _, tok := range tokens {
		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part == "" {
				continue
			}
			cur := len(lines) - 1
			lines[cur] = append(lines[cur], Token{Kind: tok.Kind, Text: part})
		}
	}
	return lines
}

// TokensForLine returns the tokens on 0-based line n, or nil when n is out of range.
func TokensForLine(tokens []Token, n int) []Token {
	if n < 0 {
		return nil
	}
	lines := Lines(tokens)
	if n >= len(lines) {
		return nil
	}
	return lines[n]
}
