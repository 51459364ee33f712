package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mvp-joe/ferrite/internal/analysis"
)

// ChangeSet contains the result of change detection. Paths are relative
// and slash-separated.
type ChangeSet struct {
	Added     []string // New files not in the index
	Modified  []string // Files whose content hash differs from the index
	Deleted   []string // Indexed files that no longer exist or no longer match
	Unchanged []string // Files with the same content hash
}

// Changed returns Added followed by Modified.
func (c *ChangeSet) Changed() []string {
	out := make([]string, 0, len(c.Added)+len(c.Modified))
	out = append(out, c.Added...)
	return append(out, c.Modified...)
}

// detectChanges compares disk to the index.
//
// Without a hint every discovered file is checked and every indexed file
// that was not discovered is Deleted. With a hint only the hinted paths are
// considered: a hinted path that is missing from disk or excluded by
// discovery is Deleted when it is indexed, and ignored otherwise.
func (idx *Indexer) detectChanges(ctx context.Context, hint []string) (*ChangeSet, error) {
	changes := &ChangeSet{
		Added:     []string{},
		Modified:  []string{},
		Deleted:   []string{},
		Unchanged: []string{},
	}

	indexed, err := idx.reader.FileHashes()
	if err != nil {
		return nil, fmt.Errorf("failed to read indexed files: %w", err)
	}

	full := len(hint) == 0
	candidates := hint
	if full {
		candidates, err = idx.discovery.Files()
		if err != nil {
			return nil, fmt.Errorf("failed to discover files: %w", err)
		}
	}

	seen := make(map[string]bool, len(candidates))
	for _, rel := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		if seen[rel] {
			continue
		}
		seen[rel] = true

		oldHash, inIndex := indexed[rel]
		if !idx.discovery.Matches(rel) {
			if inIndex {
				changes.Deleted = append(changes.Deleted, rel)
			}
			continue
		}

		content, err := os.ReadFile(filepath.Join(idx.discovery.Root(), filepath.FromSlash(rel)))
		if errors.Is(err, fs.ErrNotExist) {
			if inIndex {
				changes.Deleted = append(changes.Deleted, rel)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rel, err)
		}

		switch {
		case !inIndex:
			changes.Added = append(changes.Added, rel)
		case oldHash != analysis.Hash(string(content)):
			changes.Modified = append(changes.Modified, rel)
		default:
			changes.Unchanged = append(changes.Unchanged, rel)
		}
	}

	if full {
		for rel := range indexed {
			if !seen[rel] {
				changes.Deleted = append(changes.Deleted, rel)
			}
		}
	}

	sort.Strings(changes.Added)
	sort.Strings(changes.Modified)
	sort.Strings(changes.Deleted)
	sort.Strings(changes.Unchanged)
	return changes, nil
}
