package cli

// Test Plan for output helpers:
// - formatNumber inserts thousands separators and keeps the sign
// - formatTimeSince buckets durations into minutes, hours and days
// - writeStatus prints counts, kinds in order and the last run outcome
// - CLIProgressReporter prints nothing when quiet and a summary otherwise
// - writeTokenLines drops whitespace-only tokens
// - lineRange prints 1-based single lines and spans

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/ferrite/internal/indexer"
	"github.com/mvp-joe/ferrite/internal/lexer"
	"github.com/mvp-joe/ferrite/internal/storage"
	"github.com/mvp-joe/ferrite/internal/symbols"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "formatNumber(%d)", tt.in)
	}
}

func TestFormatTimeSince(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 min ago"},
		{42 * time.Minute, "42 mins ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{30 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatTimeSince(now.Add(-tt.ago), now))
	}
	assert.Equal(t, "never", formatTimeSince(time.Time{}, now))
}

// Test: a finished run reports its counts; a failed run its error.
func TestWriteStatus(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-2 * time.Hour)
	finished := started.Add(1500 * time.Millisecond)

	stats := &storage.Stats{
		Files:   3,
		Symbols: 1200,
		ByKind: map[symbols.Kind]int{
			symbols.KindTypeRecord: 2,
			symbols.KindCallable:   5,
		},
		LastRun: &storage.Run{StartedAt: started, FinishedAt: &finished, FilesIndexed: 3},
	}
	var buf bytes.Buffer
	writeStatus(&buf, "/p/.ferrite/index.db", "main", stats, now)
	out := buf.String()

	assert.Contains(t, out, "Database:      /p/.ferrite/index.db")
	assert.Contains(t, out, "Branch:        main")
	assert.Contains(t, out, "Symbols:       1,200")
	assert.Less(t, strings.Index(out, "function"), strings.Index(out, "struct"))
	assert.Contains(t, out, "Last run: 2 hours ago")
	assert.Contains(t, out, "3 indexed, 0 unchanged, 0 removed in 1.5s")

	stats.LastRun = &storage.Run{StartedAt: started, FinishedAt: &finished, Error: "disk full"}
	buf.Reset()
	writeStatus(&buf, "db", "", stats, now)
	assert.Contains(t, buf.String(), "failed (disk full)")
	assert.NotContains(t, buf.String(), "Branch:")

	stats.LastRun = nil
	buf.Reset()
	writeStatus(&buf, "db", "", stats, now)
	assert.Contains(t, buf.String(), "Last run: never")
}

func TestCLIProgressReporter(t *testing.T) {
	t.Parallel()
	stats := &indexer.Stats{FilesIndexed: 2, FilesRemoved: 1, Symbols: 40, SymbolDelta: -3, Duration: 2 * time.Second}

	var quiet bytes.Buffer
	q := NewCLIProgressReporter(&quiet, true)
	q.OnDiscoveryComplete(2, 0, 1)
	q.OnFileProcessed("a.rs")
	q.OnComplete(stats)
	assert.Empty(t, quiet.String())

	var loud bytes.Buffer
	r := NewCLIProgressReporter(&loud, false)
	r.OnDiscoveryComplete(2, 0, 1)
	r.OnFileProcessed("a.rs")
	r.OnFileProcessed("b.rs")
	r.OnComplete(stats)
	out := loud.String()
	assert.Contains(t, out, "Found 2 changed, 0 unchanged and 1 deleted files")
	assert.Contains(t, out, "✓ Indexing complete: 40 symbols in 2.0s")
	assert.Contains(t, out, "Removed:   1 files")
	assert.Contains(t, out, "Symbols:   -3")
	assert.NotContains(t, out, "Failed:")
}

func TestWriteTokenLines(t *testing.T) {
	t.Parallel()
	tokens := lexer.Tokenize("let x;\n  y")
	var buf bytes.Buffer
	writeTokenLines(&buf, lexer.Lines(tokens), -1)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.NotContains(t, buf.String(), `" "`)
	assert.True(t, strings.HasPrefix(lines[1], "   2 |"))
}

func TestLineRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "line 1", lineRange(symbols.Symbol{}))
	assert.Equal(t, "lines 5-9", lineRange(symbols.Symbol{Line: 4, EndLine: 8}))
}
