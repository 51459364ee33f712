package lexer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Tokenize:
// - Concatenated token text reconstructs the input for well-formed and broken sources
// - Random byte strings never stall or panic the scanner
// - Unterminated block comments, strings and attributes run to the documented boundary
// - Lifetimes and char literals are told apart by the closing quote
// - Identifiers are classified as keyword, type, macro, callable, constant or self
// - Numeric literals keep prefixes, separators, exponents and suffixes in one token
// - Lines and TokensForLine split multi-line tokens at newline boundaries

func nonSpace(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Test: token text round-trips for representative inputs
func TestTokenize_Coverage(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"struct Foo { pub bar: i32 }",
		"fn new() -> Self { Self {} }",
		"impl<'a, T: Clone> Iterator for Iter<'a, T> {\n    type Item = &'a T;\n}\n",
		"let s = r#\"raw \"quoted\" text\"#; let b = b\"bytes\\n\";",
		"#![allow(dead_code)]\n#[derive(Debug, \"]\")]\nenum E { A = 0x1F, B = 1_000 }",
		"/* outer /* inner */ still */ let x = 'x'; let y = '\\u{1F600}';",
		"match v { 0..=9 => {}, _ => {} }",
		"unterminated \"string\nacross lines",
		"tabs\tand\r\ncarriage\rreturns\f",
		"ünïcödé idents → arrows",
		"'",
		"#[",
		"r#",
		"0x",
		"1.",
	}
	for _, in := range inputs {
		assert.Equal(t, in, Join(Tokenize(in)), "input %q", in)
	}
}

// Test: random bytes are total and covered
func TestTokenize_RandomInputTotality(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("abcXYZ019_ \t\n{}()[]<>'\"#!/*r&|=:;.,\\\xff\xc3")
	for i := 0; i < 500; i++ {
		buf := make([]byte, rng.Intn(64))
		for j := range buf {
			if rng.Intn(8) == 0 {
				buf[j] = byte(rng.Intn(256))
			} else {
				buf[j] = alphabet[rng.Intn(len(alphabet))]
			}
		}
		in := string(buf)
		tokens := Tokenize(in)
		require.Equal(t, in, Join(tokens), "input %q", in)
		for _, tok := range tokens {
			require.NotEmpty(t, tok.Text)
		}
	}
}

// Test: an unterminated block comment swallows the rest of the buffer
func TestTokenize_UnterminatedBlockComment(t *testing.T) {
	t.Parallel()

	in := "fn a() {}\n/* never closed\nstruct B;"
	tokens := Tokenize(in)

	last := tokens[len(tokens)-1]
	assert.Equal(t, KindComment, last.Kind)
	assert.Equal(t, "/* never closed\nstruct B;", last.Text)
}

// Test: nested block comments close at matching depth
func TestTokenize_NestedBlockComment(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("/* a /* b */ c */x")
	require.Len(t, tokens, 2)
	assert.Equal(t, Token{Kind: KindComment, Text: "/* a /* b */ c */"}, tokens[0])
	assert.Equal(t, Token{Kind: KindPlain, Text: "x"}, tokens[1])
}

// Test: attributes honor nested brackets and stop at end of line when unterminated
func TestTokenize_Attributes(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("#[derive(Debug, Clone)]\nstruct A;")
	assert.Equal(t, Token{Kind: KindAttribute, Text: "#[derive(Debug, Clone)]"}, tokens[0])

	tokens = Tokenize("#[cfg(all(test, feature = \"x]\"))] fn f() {}")
	assert.Equal(t, Token{Kind: KindAttribute, Text: "#[cfg(all(test, feature = \"x]\"))]"}, tokens[0])

	tokens = Tokenize("#[cfg(test\nfn x() {}")
	assert.Equal(t, Token{Kind: KindAttribute, Text: "#[cfg(test"}, tokens[0])
	assert.Equal(t, Token{Kind: KindPlain, Text: "\n"}, tokens[1])
}

// Test: lifetimes versus char literals
func TestTokenize_LifetimeAndChar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Token
	}{
		{"'a", Token{Kind: KindLifetime, Text: "'a"}},
		{"'static str", Token{Kind: KindLifetime, Text: "'static"}},
		{"'a'", Token{Kind: KindChar, Text: "'a'"}},
		{"'\\n'", Token{Kind: KindChar, Text: "'\\n'"}},
		{"'\\''", Token{Kind: KindChar, Text: "'\\''"}},
		{"'\\u{1F600}'", Token{Kind: KindChar, Text: "'\\u{1F600}'"}},
		{"' '", Token{Kind: KindChar, Text: "' '"}},
		{"'é'", Token{Kind: KindChar, Text: "'é'"}},
	}
	for _, tt := range tests {
		tokens := Tokenize(tt.in)
		require.NotEmpty(t, tokens)
		assert.Equal(t, tt.want, tokens[0], "input %q", tt.in)
	}

	// A stray quote falls through to punctuation.
	tokens := Tokenize("' x")
	assert.Equal(t, Token{Kind: KindPunctuation, Text: "'"}, tokens[0])
}

// Test: strings, byte strings and raw strings
func TestTokenize_Strings(t *testing.T) {
	t.Parallel()

	tokens := nonSpace(Tokenize(`let s = "a \"b\" c";`))
	assert.Equal(t, Token{Kind: KindString, Text: `"a \"b\" c"`}, tokens[3])

	tokens = nonSpace(Tokenize(`b"bytes" r"raw" r##"has "# inside"## br#"x"#`))
	require.Len(t, tokens, 4)
	for _, tok := range tokens {
		assert.Equal(t, KindString, tok.Kind, tok.Text)
	}
	assert.Equal(t, `r##"has "# inside"##`, tokens[2].Text)

	tokens = Tokenize(`"never closed`)
	require.Len(t, tokens, 1)
	assert.Equal(t, KindString, tokens[0].Kind)
}

// Test: identifier classification
func TestTokenize_Identifiers(t *testing.T) {
	t.Parallel()

	tokens := nonSpace(Tokenize("pub fn main() -> Self { if x != MAX_LEN { println!(\"{}\", Some(v)); } }"))
	want := []Token{
		{KindKeyword, "pub"},
		{KindKeyword, "fn"},
		{KindCallable, "main"},
		{KindPunctuation, "("},
		{KindPunctuation, ")"},
		{KindOperator, "->"},
		{KindSelf, "Self"},
		{KindPunctuation, "{"},
		{KindControlFlow, "if"},
		{KindPlain, "x"},
		{KindOperator, "!="},
		{KindConstant, "MAX_LEN"},
		{KindPunctuation, "{"},
		{KindMacro, "println!"},
		{KindPunctuation, "("},
		{KindString, "\"{}\""},
		{KindPunctuation, ","},
		{KindBuiltin, "Some"},
		{KindPunctuation, "("},
		{KindPlain, "v"},
		{KindPunctuation, ")"},
		{KindPunctuation, ")"},
		{KindPunctuation, ";"},
		{KindPunctuation, "}"},
		{KindPunctuation, "}"},
	}
	assert.Equal(t, want, tokens)

	tokens = nonSpace(Tokenize("HashMap<String, Widget> std::mem"))
	assert.Equal(t, []Token{
		{KindTypeName, "HashMap"},
		{KindOperator, "<"},
		{KindTypeName, "String"},
		{KindPunctuation, ","},
		{KindTypeName, "Widget"},
		{KindOperator, ">"},
		{KindPlain, "std"},
		{KindPunctuation, "::"},
		{KindPlain, "mem"},
	}, tokens)
}

// Test: numeric literals and range operators
func TestTokenize_Numbers(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0xFF_u8", "0b1010", "0o17", "1_000", "3.14", "2.5e-3f64", "1e10", "42usize"} {
		tokens := Tokenize(in)
		require.Len(t, tokens, 1, in)
		assert.Equal(t, Token{Kind: KindNumber, Text: in}, tokens[0])
	}

	assert.Equal(t, []Token{
		{KindNumber, "1"},
		{KindOperator, ".."},
		{KindNumber, "2"},
	}, Tokenize("1..2"))
	assert.Equal(t, []Token{
		{KindNumber, "0"},
		{KindOperator, "..="},
		{KindNumber, "9"},
	}, Tokenize("0..=9"))
}

// Test: operators match greedily
func TestTokenize_Operators(t *testing.T) {
	t.Parallel()

	tokens := nonSpace(Tokenize("a <<= 1 && b >= c => d"))
	var ops []string
	for _, tok := range tokens {
		if tok.Kind == KindOperator {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"<<=", "&&", ">=", "=>"}, ops)
}

// Test: line projection splits multi-line tokens
func TestLines(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("a /* x\ny */ b\n")
	lines := Lines(tokens)
	require.Len(t, lines, 3)
	assert.Equal(t, []Token{{KindPlain, "a"}, {KindPlain, " "}, {KindComment, "/* x"}}, lines[0])
	assert.Equal(t, []Token{{KindComment, "y */"}, {KindPlain, " "}, {KindPlain, "b"}}, lines[1])
	assert.Empty(t, lines[2])

	assert.Equal(t, lines[1], TokensForLine(tokens, 1))
	assert.Nil(t, TokensForLine(tokens, 3))
	assert.Nil(t, TokensForLine(tokens, -1))
}

// Test: line count matches the newline count of the input
func TestLines_CountMatchesInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "x", "x\n", "\n\n", "\"multi\nline\nstring\"\nnext"} {
		assert.Len(t, Lines(Tokenize(in)), strings.Count(in, "\n")+1, "input %q", in)
	}
}
