// Package git answers the few questions ferrite asks of a git checkout.
package git

import (
	"os/exec"
	"strings"
)

// Operations locates the checkout around a path. Tests substitute MockOperations.
type Operations interface {
	// WorktreeRoot returns the top-level directory of the worktree containing
	// path, or path itself outside a repository.
	WorktreeRoot(path string) string

	// CurrentBranch returns the checked-out branch, "detached-<short hash>"
	// for a detached HEAD, or "" outside a repository.
	CurrentBranch(path string) string
}

type gitOps struct{}

// NewOperations returns Operations backed by the git binary.
func NewOperations() Operations {
	return gitOps{}
}

func (gitOps) WorktreeRoot(path string) string {
	out, err := run(path, "rev-parse", "--show-toplevel")
	if err != nil || out == "" {
		return path
	}
	return out
}

func (gitOps) CurrentBranch(path string) string {
	if out, err := run(path, "branch", "--show-current"); err == nil && out != "" {
		return out
	}
	// Might be detached HEAD
	out, err := run(path, "rev-parse", "--short", "HEAD")
	if err != nil || out == "" {
		return ""
	}
	return "detached-" + out
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// MockOperations returns fixed answers.
type MockOperations struct {
	Root   string
	Branch string
}

func (m *MockOperations) WorktreeRoot(path string) string {
	if m.Root == "" {
		return path
	}
	return m.Root
}

func (m *MockOperations) CurrentBranch(string) string { return m.Branch }
