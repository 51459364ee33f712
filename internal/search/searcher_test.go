package search

// Test Plan for Searcher:
// - FromIndex indexes every stored symbol
// - Field-scoped queries find a symbol with its location
// - Kind and file path filters narrow results natively
// - Update removes deleted symbols
// - A cancelled context is rejected

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/storage"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

func fixtureSearcher(t *testing.T) (*Searcher, *storage.Reader) {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "rust", "inventory.rs"))
	require.NoError(t, err)

	db := storage.NewTestDB(t)
	res := analysis.Analyze(string(content))
	require.NoError(t, storage.NewWriter(db).WriteFile(storage.FileRecord{FilePath: "src/inventory.rs"}, res))

	reader := storage.NewReader(db)
	s, err := FromIndex(context.Background(), reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, reader
}

// Test: every stored symbol becomes a document.
func TestFromIndex_Count(t *testing.T) {
	t.Parallel()
	s, reader := fixtureSearcher(t)

	stored, err := reader.Symbols(storage.SymbolFilter{})
	require.NoError(t, err)
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(stored)), n)
}

// Test: a name-scoped query returns the symbol and its stored fields.
func TestSearch_ByName(t *testing.T) {
	t.Parallel()
	s, _ := fixtureSearcher(t)

	results, err := s.Search(context.Background(), "name:restock", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "restock", top.Name)
	assert.Equal(t, symbols.KindCallable, top.Kind)
	assert.Equal(t, "src/inventory.rs", top.FilePath)
	assert.Equal(t, 79, top.Line)
	assert.NotEmpty(t, top.Why)
	assert.NotEmpty(t, top.ID)
}

// Test: kind and path filters are applied by the index.
func TestSearch_Filters(t *testing.T) {
	t.Parallel()
	s, _ := fixtureSearcher(t)

	records, err := s.Search(context.Background(), "inventory", Options{Kind: symbols.KindTypeRecord})
	require.NoError(t, err)
	require.NotEmpty(t, records)
	var names []string
	for _, r := range records {
		assert.Equal(t, symbols.KindTypeRecord, r.Kind)
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "Inventory")

	inSrc, err := s.Search(context.Background(), "name:restock", Options{FilePath: "src/*"})
	require.NoError(t, err)
	assert.NotEmpty(t, inSrc)

	elsewhere, err := s.Search(context.Background(), "name:restock", Options{FilePath: "tests/*"})
	require.NoError(t, err)
	assert.Empty(t, elsewhere)
}

// Test: limits are clamped to the default.
func TestSearch_Limit(t *testing.T) {
	t.Parallel()
	s, _ := fixtureSearcher(t)

	one, err := s.Search(context.Background(), "inventory item store", Options{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)

	clamped, err := s.Search(context.Background(), "inventory item store", Options{Limit: MaxLimit + 1})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(clamped), DefaultLimit)
}

// Test: deleted IDs disappear from results.
func TestUpdate_Delete(t *testing.T) {
	t.Parallel()
	s, _ := fixtureSearcher(t)

	before, err := s.Search(context.Background(), "name:restock", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, before)
	count, err := s.Count()
	require.NoError(t, err)

	require.NoError(t, s.Update(context.Background(), nil, []string{before[0].ID}))

	after, err := s.Search(context.Background(), "name:restock", Options{})
	require.NoError(t, err)
	assert.Empty(t, after)
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, count-1, n)
}

// Test: cancelled contexts fail fast.
func TestSearch_Cancelled(t *testing.T) {
	t.Parallel()
	s, _ := fixtureSearcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, "item", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
