package git

// Test Plan for Operations:
// - WorktreeRoot finds the top level from a nested directory
// - WorktreeRoot and CurrentBranch degrade outside a repository
// - CurrentBranch reports named and detached checkouts
// - MockOperations falls back to the given path
//
// Tests that shell out to git run sequentially and skip when git is missing.

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return strings.TrimSpace(string(out))
}

// newRepo creates a repository on branch main with one commit.
func newRepo(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.rs"), []byte("fn main() {}\n"), 0o644))
	runGit(t, dir, "add", "lib.rs")
	runGit(t, dir, "commit", "-m", "initial")
	return dir
}

func TestWorktreeRoot(t *testing.T) {
	requireGit(t)
	repo := newRepo(t)
	nested := filepath.Join(repo, "src", "net")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	ops := NewOperations()
	assert.Equal(t, repo, ops.WorktreeRoot(nested))
	assert.Equal(t, repo, ops.WorktreeRoot(repo))
}

func TestOperations_OutsideRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	ops := NewOperations()
	assert.Equal(t, dir, ops.WorktreeRoot(dir))
	assert.Equal(t, "", ops.CurrentBranch(dir))
}

func TestCurrentBranch(t *testing.T) {
	requireGit(t)
	repo := newRepo(t)
	ops := NewOperations()
	assert.Equal(t, "main", ops.CurrentBranch(repo))

	runGit(t, repo, "checkout", "-b", "feature/lexer")
	assert.Equal(t, "feature/lexer", ops.CurrentBranch(repo))

	hash := runGit(t, repo, "rev-parse", "--short", "HEAD")
	runGit(t, repo, "checkout", "--detach")
	assert.Equal(t, "detached-"+hash, ops.CurrentBranch(repo))
}

func TestMockOperations(t *testing.T) {
	t.Parallel()
	m := &MockOperations{Branch: "main"}
	assert.Equal(t, "/work", m.WorktreeRoot("/work"))
	assert.Equal(t, "main", m.CurrentBranch("/work"))

	m.Root = "/repo"
	assert.Equal(t, "/repo", m.WorktreeRoot("/repo/src"))
}
