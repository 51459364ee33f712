package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// FileRecord is one indexed file.
type FileRecord struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	LineCount   int       `json:"line_count"`
	SymbolCount int       `json:"symbol_count"`
	SizeBytes   int64     `json:"size_bytes"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// StoredSymbol is a symbol together with the file it was found in.
type StoredSymbol struct {
	ID       string         `json:"id"`
	FilePath string         `json:"file_path"`
	Symbol   symbols.Symbol `json:"symbol"`
}

// Reference is one line of one file mentioning a name.
type Reference struct {
	FilePath string `json:"file_path"`
	Name     string `json:"name"`
	Line     int    `json:"line"`
}

// Relationship is a parsed relationship string such as "implements Store".
type Relationship struct {
	ID       string       `json:"id"`
	FilePath string       `json:"file_path"`
	FromName string       `json:"from_name"`
	FromKind symbols.Kind `json:"from_kind"`
	Relation string       `json:"relation"`
	ToName   string       `json:"to_name"`
}

// ParseRelationship splits "adds behavior to Inventory" into the relation
// "adds behavior to" and the target "Inventory". The target is always the
// last word.
func ParseRelationship(s string) (relation, target string, ok bool) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, ' ')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// Run records one index pass.
type Run struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	FilesIndexed int        `json:"files_indexed"`
	FilesSkipped int        `json:"files_skipped"`
	FilesRemoved int        `json:"files_removed"`
	Error        string     `json:"error,omitempty"`
}

// SymbolFilter narrows a symbol search. Empty fields match everything.
type SymbolFilter struct {
	Name       string       // exact name
	NamePrefix string       // name prefix, ASCII case-insensitive
	Kind       symbols.Kind // exact kind
	FilePath   string       // exact file
	Limit      uint64       // 0 means no limit
}

// Stats summarizes the index.
type Stats struct {
	Files         int                  `json:"files"`
	Symbols       int                  `json:"symbols"`
	References    int                  `json:"references"`
	Relationships int                  `json:"relationships"`
	ByKind        map[symbols.Kind]int `json:"by_kind"`
	LastRun       *Run                 `json:"last_run,omitempty"`
}
