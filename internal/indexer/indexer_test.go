package indexer

// Test Plan for Indexer:
// - A first pass indexes every discovered file and records a run
// - A second pass over unchanged files analyzes nothing
// - Editing a file re-indexes only that file and reports the symbol delta
// - Deleting a file removes it and its symbols from the index
// - IndexFiles handles hinted additions and removals only
// - Progress callbacks see every changed file
// - A cancelled context aborts the pass and records the failure

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ferrite/internal/analysis"
	"github.com/mvp-joe/ferrite/internal/discovery"
	"github.com/mvp-joe/ferrite/internal/storage"
)

const (
	libSrc = `pub struct Item {
    pub id: u32,
}

pub fn make_item(id: u32) -> Item {
    Item { id }
}
`
	mainSrc = `fn main() {
    let _ = 1;
}
`
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func symbolsIn(src string) int {
	return len(analysis.Analyze(src).Symbols)
}

func setup(t *testing.T, opts Options) (*Indexer, *sql.DB, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", libSrc)
	writeFile(t, root, "src/main.rs", mainSrc)
	writeFile(t, root, "README.md", "# not rust\n")

	disc, err := discovery.New(root, discovery.Options{Include: []string{"**/*.rs"}})
	require.NoError(t, err)
	db := storage.NewTestDB(t)
	return New(disc, db, opts), db, root
}

type recordingProgress struct {
	mu        sync.Mutex
	changed   int
	processed []string
	completed *Stats
}

func (r *recordingProgress) OnDiscoveryComplete(changed, unchanged, deleted int) {
	r.changed = changed
}

func (r *recordingProgress) OnFileProcessed(filePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, filePath)
}

func (r *recordingProgress) OnComplete(stats *Stats) { r.completed = stats }

// Test: the first pass indexes both Rust files and nothing else.
func TestIndex_FirstPass(t *testing.T) {
	t.Parallel()
	idx, db, _ := setup(t, Options{Workers: 4})

	stats, err := idx.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Zero(t, stats.FilesUnchanged)
	assert.Zero(t, stats.FilesFailed)

	want := symbolsIn(libSrc) + symbolsIn(mainSrc)
	assert.Equal(t, want, stats.Symbols)
	assert.Equal(t, want, stats.SymbolDelta)

	reader := storage.NewReader(db)
	files, err := reader.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/lib.rs", files[0].FilePath)
	assert.Equal(t, "src/main.rs", files[1].FilePath)
	assert.Equal(t, int64(len(libSrc)), files[0].SizeBytes)

	run, err := reader.LastRun()
	require.NoError(t, err)
	assert.Equal(t, 2, run.FilesIndexed)
	assert.NotNil(t, run.FinishedAt)
	assert.Empty(t, run.Error)
}

// Test: unchanged content is skipped on the next pass.
func TestIndex_SkipsUnchanged(t *testing.T) {
	t.Parallel()
	idx, _, _ := setup(t, Options{})

	_, err := idx.Index(context.Background())
	require.NoError(t, err)

	stats, err := idx.Index(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.FilesIndexed)
	assert.Equal(t, 2, stats.FilesUnchanged)
	assert.Zero(t, stats.SymbolDelta)
}

// Test: an edited file is re-indexed alone and the delta is reported.
func TestIndex_Modified(t *testing.T) {
	t.Parallel()
	idx, db, root := setup(t, Options{})

	_, err := idx.Index(context.Background())
	require.NoError(t, err)

	edited := libSrc + "\npub const LIMIT: u32 = 10;\n"
	writeFile(t, root, "src/lib.rs", edited)

	stats, err := idx.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesUnchanged)
	assert.Equal(t, symbolsIn(edited)-symbolsIn(libSrc), stats.SymbolDelta)

	found, err := storage.NewReader(db).Symbols(storage.SymbolFilter{Name: "LIMIT"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "src/lib.rs", found[0].FilePath)
}

// Test: a deleted file disappears from the index.
func TestIndex_Deleted(t *testing.T) {
	t.Parallel()
	idx, db, root := setup(t, Options{})

	_, err := idx.Index(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "src", "main.rs")))

	stats, err := idx.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesRemoved)
	assert.Equal(t, -symbolsIn(mainSrc), stats.SymbolDelta)

	found, err := storage.NewReader(db).Symbols(storage.SymbolFilter{Name: "main"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

// Test: hinted paths are the only ones considered.
func TestIndexFiles_Hint(t *testing.T) {
	t.Parallel()
	idx, db, root := setup(t, Options{})

	_, err := idx.Index(context.Background())
	require.NoError(t, err)

	writeFile(t, root, "src/extra.rs", "pub enum Mode { A, B }\n")
	writeFile(t, root, "src/ignored_by_hint.rs", "pub struct Unseen;\n")
	require.NoError(t, os.Remove(filepath.Join(root, "src", "main.rs")))

	stats, err := idx.IndexFiles(context.Background(), []string{"src/extra.rs", "src/main.rs", "README.md"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesRemoved)

	files, err := storage.NewReader(db).Files()
	require.NoError(t, err)
	var paths []string
	for _, f := range files {
		paths = append(paths, f.FilePath)
	}
	assert.Equal(t, []string{"src/extra.rs", "src/lib.rs"}, paths)

	empty, err := idx.IndexFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, empty.FilesIndexed)
}

// Test: progress sees every changed file and the final stats.
func TestIndex_Progress(t *testing.T) {
	t.Parallel()
	progress := &recordingProgress{}
	idx, _, _ := setup(t, Options{Workers: 2, Progress: progress})

	stats, err := idx.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, progress.changed)
	assert.ElementsMatch(t, []string{"src/lib.rs", "src/main.rs"}, progress.processed)
	assert.Same(t, stats, progress.completed)
}

// Test: cancellation aborts the pass and the run records the error.
func TestIndex_Cancelled(t *testing.T) {
	t.Parallel()
	idx, db, _ := setup(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Index(ctx)
	require.ErrorIs(t, err, context.Canceled)

	run, err := storage.NewReader(db).LastRun()
	require.NoError(t, err)
	assert.NotEmpty(t, run.Error)
}
