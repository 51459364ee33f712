package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for FindBlockEnd:
// - Returns the line where brace depth first returns to zero
// - Handles a body that opens on a later line than the declaration
// - Treats a brace-less line ending in ';' as its own end
// - Ignores braces in line comments, string literals and char literals
// - Falls back to start+1, clamped, on truncated input
// - Clamps out-of-range start lines

func TestFindBlockEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		start int
		want  int
	}{
		{"single line body", []string{"fn a() { b() }"}, 0, 0},
		{"multi line body", []string{"fn a() {", "    x", "}"}, 0, 2},
		{"brace on next line", []string{"fn a()", "{", "}"}, 0, 2},
		{"nested blocks", []string{"impl A {", "  fn b() {", "  }", "}", "fn c() {}"}, 0, 3},
		{"semicolon form", []string{"struct A;", "fn b() {}"}, 0, 0},
		{"start past other code", []string{"fn a() {}", "mod m {", "}"}, 1, 2},
		{"brace in line comment", []string{"fn a() { // }", "}"}, 0, 1},
		{"brace in string", []string{"fn a() {", "  let s = \"}\";", "}"}, 0, 2},
		{"brace in char literal", []string{"match c {", "  '}' => 1,", "}"}, 0, 2},
		{"truncated after open", []string{"fn a() {", "  x", "  y"}, 0, 1},
		{"truncated on last line", []string{"fn a() {"}, 0, 0},
		{"start beyond end", []string{"a", "b"}, 5, 1},
		{"negative start", []string{"fn a() {}", "b"}, -3, 0},
		{"empty input", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FindBlockEnd(tt.lines, tt.start))
		})
	}
}

// Test: results always index into lines
func TestFindBlockEnd_InRange(t *testing.T) {
	t.Parallel()

	lines := []string{"{", "{", "}", "{", "x", "}}}", "}", "{"}
	for start := range lines {
		end := FindBlockEnd(lines, start)
		assert.GreaterOrEqual(t, end, start)
		assert.Less(t, end, len(lines))
	}
}

func TestLineComment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "display name", lineComment("    pub name: String, // display name"))
	assert.Equal(t, "", lineComment(`    url: &str = "http://x",`))
	assert.Equal(t, "", lineComment("    plain: u8,"))
}
