package watcher

// Test Plan for FileWatcher and Reindexer:
// - NewFileWatcher fails for a missing root
// - A changed source file is delivered as a relative path
// - Files discovery excludes never reach the callback
// - Ignored directories are not watched
// - Start rejects a nil callback; Stop is idempotent
// - Reindexer runs an incremental index and reports the symbol delta

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ferrite/internal/discovery"
	"github.com/mvp-joe/ferrite/internal/indexer"
	"github.com/mvp-joe/ferrite/internal/storage"
)

const testDebounce = 30 * time.Millisecond

func newDiscovery(t *testing.T, root string) *discovery.Discovery {
	t.Helper()
	disc, err := discovery.New(root, discovery.Options{
		Include: []string{"**/*.rs"},
		Ignore:  []string{"target/**"},
	})
	require.NoError(t, err)
	return disc
}

type batches struct {
	mu  sync.Mutex
	all [][]string
}

func (b *batches) add(files []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, files)
}

func (b *batches) seen(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, batch := range b.all {
		for _, f := range batch {
			if f == path {
				return true
			}
		}
	}
	return false
}

func startWatcher(t *testing.T, root string) (*FileWatcher, *batches) {
	t.Helper()
	fw, err := NewFileWatcher(newDiscovery(t, root), testDebounce, nil)
	require.NoError(t, err)
	b := &batches{}
	require.NoError(t, fw.Start(context.Background(), b.add))
	t.Cleanup(func() { _ = fw.Stop() })
	return fw, b
}

// Test: a missing root cannot be watched.
func TestNewFileWatcher_InvalidRoot(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "missing")
	disc, err := discovery.New(root, discovery.Options{Include: []string{"**/*.rs"}})
	require.NoError(t, err)

	fw, err := NewFileWatcher(disc, testDebounce, nil)
	assert.Error(t, err)
	assert.Nil(t, fw)
}

// Test: a write to a source file is delivered once debounced.
func TestFileWatcher_SourceChange(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	_, b := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte("struct A;\n"), 0o644))

	assert.Eventually(t, func() bool { return b.seen("src/lib.rs") }, 5*time.Second, 10*time.Millisecond)
}

// Test: excluded files and ignored directories never reach the callback.
func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target"), 0o755))
	_, b := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("docs\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "target", "gen.rs"), []byte("struct G;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}\n"), 0o644))

	require.Eventually(t, func() bool { return b.seen("main.rs") }, 5*time.Second, 10*time.Millisecond)
	assert.False(t, b.seen("README.md"))
	assert.False(t, b.seen("target/gen.rs"))
}

// Test: Start validates its callback and Stop can be repeated.
func TestFileWatcher_Lifecycle(t *testing.T) {
	t.Parallel()
	fw, err := NewFileWatcher(newDiscovery(t, t.TempDir()), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, fw.debounce)

	assert.Error(t, fw.Start(context.Background(), nil))
	require.NoError(t, fw.Start(context.Background(), func([]string) {}))
	assert.Error(t, fw.Start(context.Background(), func([]string) {}))

	require.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}

// Test: Stop works on a watcher that was never started.
func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()
	fw, err := NewFileWatcher(newDiscovery(t, t.TempDir()), testDebounce, nil)
	require.NoError(t, err)
	assert.NoError(t, fw.Stop())
}

// Test: a new file is indexed and the batch reports one added file.
func TestReindexer_IndexesChanges(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	disc := newDiscovery(t, root)
	db := storage.NewTestDB(t)
	idx := indexer.New(disc, db, indexer.Options{})

	fw, err := NewFileWatcher(disc, testDebounce, nil)
	require.NoError(t, err)
	r := NewReindexer(fw, idx)

	var (
		mu    sync.Mutex
		stats []*indexer.Stats
	)
	r.OnBatch = func(files []string, s *indexer.Stats, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			stats = append(stats, s)
		}
	}
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() { _ = r.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte("pub struct Item;\npub fn new_item() -> Item { Item }\n"), 0o644))

	totals := func() (indexed, delta int) {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range stats {
			indexed += s.FilesIndexed
			delta += s.SymbolDelta
		}
		return indexed, delta
	}
	require.Eventually(t, func() bool {
		_, delta := totals()
		return delta == 2
	}, 5*time.Second, 10*time.Millisecond)

	indexed, _ := totals()
	assert.GreaterOrEqual(t, indexed, 1)

	found, err := storage.NewReader(db).Symbols(storage.SymbolFilter{Name: "Item"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
