// Package discovery finds the source files of a project using include and
// ignore globs plus the project's .gitignore.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery matches project-relative paths against the configured patterns.
type Discovery struct {
	rootDir   string
	include   []compiledPattern
	ignore    []compiledPattern
	gitignore *ignore.GitIgnore
}

// Options selects which files are discovered.
type Options struct {
	Include          []string
	Ignore           []string
	RespectGitignore bool
}

// New compiles the patterns in opts for the project at rootDir.
func New(rootDir string, opts Options) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.include, err = compile(opts.Include); err != nil {
		return nil, err
	}
	if d.ignore, err = compile(opts.Ignore); err != nil {
		return nil, err
	}
	if opts.RespectGitignore {
		d.gitignore = loadGitignore(rootDir)
	}
	return d, nil
}

func compile(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		out = append(out, compiledPattern{pattern: p, glob: g})
	}
	return out, nil
}

// loadGitignore reads rootDir/.gitignore, skipping blank lines and comments.
// It returns nil when there is nothing to apply.
func loadGitignore(rootDir string) *ignore.GitIgnore {
	content, err := os.ReadFile(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}

// Root returns the project root.
func (d *Discovery) Root() string { return d.rootDir }

// Files walks the project and returns the slash-separated relative paths of
// every included file, sorted.
func (d *Discovery) Files() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if entry.IsDir() {
			if d.ignoredDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Matches(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.rootDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Matches reports whether the relative path rel is an included, non-ignored file.
func (d *Discovery) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if d.shouldIgnore(rel) {
		return false
	}
	return matchesAny(rel, d.include)
}

// IgnoredDir reports whether the relative directory rel is skipped entirely.
func (d *Discovery) IgnoredDir(rel string) bool {
	return d.ignoredDir(filepath.ToSlash(rel))
}

func (d *Discovery) ignoredDir(rel string) bool {
	if rel == ".git" || rel == ".ferrite" || strings.HasPrefix(rel, ".ferrite/") {
		return true
	}
	// "target" should match pattern "target/**"
	if matchesAny(rel+"/**", d.ignore) {
		return true
	}
	return d.gitignore != nil && d.gitignore.MatchesPath(rel+"/")
}

func (d *Discovery) shouldIgnore(rel string) bool {
	if strings.HasPrefix(rel, ".ferrite/") || strings.HasPrefix(rel, ".git/") {
		return true
	}
	if matchesAny(rel, d.ignore) {
		return true
	}
	return d.gitignore != nil && d.gitignore.MatchesPath(rel)
}

// matchesAny checks if a path matches any of the given patterns. Root-level
// paths also match patterns with a leading "**/" removed, so "**/*.rs"
// matches both "lib.rs" and "src/lib.rs".
func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}
	if strings.Contains(path, "/") {
		return false
	}
	for _, cp := range patterns {
		if !strings.HasPrefix(cp.pattern, "**/") {
			continue
		}
		if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
			return true
		}
	}
	return false
}
