// Package search provides full-text search over indexed symbols and their
// explanations, backed by an in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/ferrite/internal/storage"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Limits for Options.Limit.
const (
	DefaultLimit = 15
	MaxLimit     = 100
)

// Options narrows a search. Zero values apply no filter.
type Options struct {
	Kind     symbols.Kind
	FilePath string // wildcard pattern, e.g. "src/*"
	Limit    int
}

// Result is one matching symbol.
type Result struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Kind       symbols.Kind `json:"kind"`
	FilePath   string       `json:"file_path"`
	Line       int          `json:"line"`
	Why        string       `json:"why"`
	Score      float64      `json:"score"`
	Highlights []string     `json:"highlights,omitempty"`
}

// Searcher is a full-text index of symbols.
type Searcher struct {
	index bleve.Index
	mu    sync.RWMutex
}

var storedFields = []string{"name", "kind", "file_path", "line", "why"}

// New indexes syms into a fresh in-memory index.
func New(ctx context.Context, syms []storage.StoredSymbol) (*Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	s := &Searcher{index: index}
	if err := s.Update(ctx, syms, nil); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index symbols: %w", err)
	}
	return s, nil
}

// FromIndex indexes every symbol stored in the project index.
func FromIndex(ctx context.Context, r *storage.Reader) (*Searcher, error) {
	syms, err := r.Symbols(storage.SymbolFilter{})
	if err != nil {
		return nil, err
	}
	return New(ctx, syms)
}

func buildMapping() *mapping.IndexMappingImpl {
	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.IncludeTermVectors = true
		return m
	}
	keyword := func(store bool) *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = store
		return m
	}
	line := bleve.NewNumericFieldMapping()
	line.Store = true
	line.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", text())
	doc.AddFieldMappingsAt("kind", keyword(true))
	doc.AddFieldMappingsAt("pattern", keyword(false))
	doc.AddFieldMappingsAt("file_path", keyword(true))
	doc.AddFieldMappingsAt("line", line)
	doc.AddFieldMappingsAt("signature", text())
	doc.AddFieldMappingsAt("doc", text())
	doc.AddFieldMappingsAt("why", text())
	doc.AddFieldMappingsAt("how", text())
	doc.AddFieldMappingsAt("notes", text())

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

func toDocument(s storage.StoredSymbol) map[string]interface{} {
	sym := s.Symbol
	return map[string]interface{}{
		"name":      sym.Name,
		"kind":      string(sym.Kind),
		"pattern":   sym.DesignPattern,
		"file_path": s.FilePath,
		"line":      float64(sym.Line),
		"signature": sym.Signature,
		"doc":       sym.Doc,
		"why":       sym.WhyItExists,
		"how":       sym.HowItWorks,
		"notes":     sym.MemoryNote + " " + sym.SafetyNote,
	}
}

// Update indexes added (or re-indexes them by ID) and removes deleted IDs in
// one batch.
func (s *Searcher) Update(ctx context.Context, added []storage.StoredSymbol, deleted []string) error {
	const batchSize = 1000

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	for _, id := range deleted {
		batch.Delete(id)
	}
	for i, sym := range added {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := batch.Index(sym.ID, toDocument(sym)); err != nil {
			return fmt.Errorf("failed to add symbol %s to batch: %w", sym.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

// Search runs a bleve query-string search. Field scoping ("why:constructor"),
// boolean operators, phrases and wildcards are supported.
func (s *Searcher) Search(ctx context.Context, queryStr string, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}
	if opts.Kind != "" {
		q := bleve.NewMatchQuery(string(opts.Kind))
		q.SetField("kind")
		queries = append(queries, q)
	}
	if opts.FilePath != "" {
		q := bleve.NewWildcardQuery(opts.FilePath)
		q.SetField("file_path")
		queries = append(queries, q)
	}
	var final query.Query = queries[0]
	if len(queries) > 1 {
		final = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(final, limit, 0, false)
	style := "html"
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Style = &style
	req.Highlight.Fields = []string{"why", "doc"}
	req.Fields = storedFields

	s.mu.RLock()
	res, err := s.index.Search(req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := Result{ID: hit.ID, Score: hit.Score}
		r.Name, _ = hit.Fields["name"].(string)
		kind, _ := hit.Fields["kind"].(string)
		r.Kind = symbols.Kind(kind)
		r.FilePath, _ = hit.Fields["file_path"].(string)
		if line, ok := hit.Fields["line"].(float64); ok {
			r.Line = int(line)
		}
		r.Why, _ = hit.Fields["why"].(string)
		for _, frags := range hit.Fragments {
			r.Highlights = append(r.Highlights, frags...)
		}
		if len(r.Highlights) > 3 {
			r.Highlights = r.Highlights[:3]
		}
		out = append(out, r)
	}
	return out, nil
}

// Count returns the number of indexed symbols.
func (s *Searcher) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases the index.
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}
