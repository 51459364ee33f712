// Package cache memoizes analysis results keyed by buffer hash.
package cache

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/ferrite/internal/analysis"
)

// Memo is a bounded in-memory cache of analysis results. It satisfies
// analysis.Cache and is safe for concurrent use.
type Memo struct {
	c otter.Cache[string, *analysis.Result]
}

// NewMemo creates a cache holding up to capacity results. A positive ttl
// expires entries that long after they were written.
func NewMemo(capacity int, ttl time.Duration) (*Memo, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	b := otter.MustBuilder[string, *analysis.Result](capacity).CollectStats()
	var (
		c   otter.Cache[string, *analysis.Result]
		err error
	)
	if ttl > 0 {
		c, err = b.WithTTL(ttl).Build()
	} else {
		c, err = b.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis cache: %w", err)
	}
	return &Memo{c: c}, nil
}

// Get returns the result stored for hash.
func (m *Memo) Get(hash string) (*analysis.Result, bool) {
	return m.c.Get(hash)
}

// Set stores r under hash.
func (m *Memo) Set(hash string, r *analysis.Result) {
	m.c.Set(hash, r)
}

// Stats reports hits and misses since creation.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Stats returns the current counters.
func (m *Memo) Stats() Stats {
	s := m.c.Stats()
	return Stats{Hits: s.Hits(), Misses: s.Misses(), Size: m.c.Size()}
}

// Close releases the cache's background resources.
func (m *Memo) Close() {
	m.c.Close()
}

var _ analysis.Cache = (*Memo)(nil)
