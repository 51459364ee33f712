// Package analysis runs the full comprehension pipeline over one buffer:
// tokens, symbols with their explanations, and the cross-reference index.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mvp-joe/ferrite/internal/explain"
	"github.com/mvp-joe/ferrite/internal/extractor"
	"github.com/mvp-joe/ferrite/internal/lexer"
	"github.com/mvp-joe/ferrite/internal/logging"
	"github.com/mvp-joe/ferrite/internal/symbols"
	"github.com/mvp-joe/ferrite/internal/xref"
)

// ErrSymbolNotFound is returned by Find when no symbol has the requested name.
var ErrSymbolNotFound = errors.New("symbol not found")

// Result is the output of one analysis. It is never mutated after Analyze
// returns, so it may be shared between callers.
type Result struct {
	Hash      string           `json:"hash"`
	LineCount int              `json:"line_count"`
	Tokens    []lexer.Token    `json:"tokens,omitempty"`
	Symbols   []symbols.Symbol `json:"symbols"`
	Refs      map[string][]int `json:"refs"`
}

// Normalize converts \r\n and lone \r line endings to \n.
func Normalize(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Hash returns the hex SHA-256 of the normalized text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Analyze runs every stage over text. It is deterministic and defined for
// every input, including the empty string and non-code text.
func Analyze(text string) *Result {
	text = Normalize(text)
	syms := explain.All(extractor.Extract(text))
	sum := sha256.Sum256([]byte(text))
	return &Result{
		Hash:      hex.EncodeToString(sum[:]),
		LineCount: strings.Count(text, "\n") + 1,
		Tokens:    lexer.Tokenize(text),
		Symbols:   syms,
		Refs:      xref.Build(text, syms),
	}
}

// Cache memoizes results by buffer hash.
type Cache interface {
	Get(hash string) (*Result, bool)
	Set(hash string, r *Result)
}

// Analyzer runs analyses through an optional cache.
type Analyzer struct {
	cache  Cache
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache memoizes results in c.
func WithCache(c Cache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// New creates an Analyzer. Without options it analyzes every call afresh.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{logger: logging.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the cached result for text when one exists.
func (a *Analyzer) Analyze(text string) *Result {
	if a.cache == nil {
		return Analyze(text)
	}
	hash := Hash(text)
	if r, ok := a.cache.Get(hash); ok {
		a.logger.Debug("analysis cache hit", "hash", hash[:12])
		return r
	}
	r := Analyze(text)
	a.cache.Set(hash, r)
	a.logger.Debug("analysis cache miss", "hash", hash[:12], "symbols", len(r.Symbols))
	return r
}

// Find returns every symbol named name, in source order.
func Find(r *Result, name string) ([]symbols.Symbol, error) {
	var out []symbols.Symbol
	for _, s := range r.Symbols {
		if s.Name == name {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return out, nil
}

// Lines returns the normalized buffer split into lines, the indexing that
// symbol lines and reference lines use.
func Lines(text string) []string {
	return strings.Split(Normalize(text), "\n")
}
