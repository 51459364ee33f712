package crosscheck

// Test Plan for Check:
// - The fixture agrees with the grammar item for item
// - A second item on the same line is reported missing
// - Declarations inside a macro invocation body are reported extra
// - Imports are never compared
// - Broken input still yields a report with SyntaxErrors set

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Test: every fixture item is found by both sides.
func TestCheck_Fixture(t *testing.T) {
	t.Parallel()
	content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "rust", "inventory.rs"))
	require.NoError(t, err)

	r, err := Check(string(content))
	require.NoError(t, err)
	assert.False(t, r.SyntaxErrors)
	assert.Empty(t, r.Missing)
	assert.Empty(t, r.Extra)
	assert.True(t, r.OK())
	assert.Equal(t, r.Grammar, r.Extracted)
	assert.Contains(t, r.Grammar, Decl{Name: "Inventory", Kind: symbols.KindContractBinding, Line: 58})
	assert.Contains(t, r.Grammar, Decl{Name: "Item", Kind: symbols.KindContractBinding, Line: 71})
	assert.Contains(t, r.Grammar, Decl{Name: "COUNTER", Kind: symbols.KindGlobalMutable, Line: 9})
}

// Test: the extractor reads one declaration per line.
func TestCheck_SameLine(t *testing.T) {
	t.Parallel()
	r, err := Check("struct A; struct B;\n")
	require.NoError(t, err)
	assert.Equal(t, []Decl{{Name: "B", Kind: symbols.KindTypeRecord, Line: 0}}, r.Missing)
	assert.Empty(t, r.Extra)
	assert.False(t, r.OK())
}

// Test: items written inside a macro body are not items to the grammar.
func TestCheck_MacroBody(t *testing.T) {
	t.Parallel()
	r, err := Check("my_macro! {\n    struct Hidden;\n}\n")
	require.NoError(t, err)
	assert.Empty(t, r.Missing)
	assert.Equal(t, []Decl{{Name: "Hidden", Kind: symbols.KindTypeRecord, Line: 1}}, r.Extra)
}

// Test: use declarations are skipped on both sides.
func TestCheck_ImportsIgnored(t *testing.T) {
	t.Parallel()
	r, err := Check("use std::fmt;\nextern crate alloc;\n")
	require.NoError(t, err)
	assert.Empty(t, r.Grammar)
	assert.Empty(t, r.Extracted)
	assert.True(t, r.OK())
}

// Test: unparseable input still produces a report.
func TestCheck_SyntaxErrors(t *testing.T) {
	t.Parallel()
	r, err := Check("fn broken( {\n")
	require.NoError(t, err)
	assert.True(t, r.SyntaxErrors)
	assert.NotNil(t, r.Missing)
	assert.NotNil(t, r.Extra)
}

// Test: Decl renders with the kind label.
func TestDecl_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "struct Item (line 13)", Decl{Name: "Item", Kind: symbols.KindTypeRecord, Line: 13}.String())
}
