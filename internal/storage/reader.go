package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/ferrite/internal/symbols"
)

// Reader handles reading the project index from SQLite.
type Reader struct {
	db *sql.DB
}

// NewReader creates a Reader. DB should have schema already created.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

var fileColumns = []string{"file_path", "file_hash", "line_count", "symbol_count", "size_bytes", "indexed_at"}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (FileRecord, error) {
	var (
		rec       FileRecord
		indexedAt string
	)
	err := row.Scan(&rec.FilePath, &rec.FileHash, &rec.LineCount, &rec.SymbolCount, &rec.SizeBytes, &indexedAt)
	if err != nil {
		return rec, err
	}
	rec.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	return rec, nil
}

// File returns the record for filePath, or ErrNotFound.
func (r *Reader) File(filePath string) (*FileRecord, error) {
	row := sq.Select(fileColumns...).
		From("files").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(r.db).
		QueryRow()
	rec, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", filePath, err)
	}
	return &rec, nil
}

// FileHashes returns the stored content hash of every indexed file.
func (r *Reader) FileHashes() (map[string]string, error) {
	rows, err := sq.Select("file_path", "file_hash").From("files").RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query file hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan file hash: %w", err)
		}
		out[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Files returns every indexed file ordered by path.
func (r *Reader) Files() ([]FileRecord, error) {
	rows, err := sq.Select(fileColumns...).From("files").OrderBy("file_path").RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	out := []FileRecord{}
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Symbols returns the symbols matching f ordered by file and line.
func (r *Reader) Symbols(f SymbolFilter) ([]StoredSymbol, error) {
	q := sq.Select("id", "file_path", "data").From("symbols").OrderBy("file_path", "line", "name")
	if f.Name != "" {
		q = q.Where(sq.Eq{"name": f.Name})
	}
	if f.NamePrefix != "" {
		q = q.Where(sq.Expr(`name LIKE ? ESCAPE '\'`, escapeLike(f.NamePrefix)+"%"))
	}
	if f.Kind != "" {
		q = q.Where(sq.Eq{"kind": string(f.Kind)})
	}
	if f.FilePath != "" {
		q = q.Where(sq.Eq{"file_path": f.FilePath})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	rows, err := q.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	out := []StoredSymbol{}
	for rows.Next() {
		var (
			s    StoredSymbol
			data string
		)
		if err := rows.Scan(&s.ID, &s.FilePath, &data); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &s.Symbol); err != nil {
			return nil, fmt.Errorf("failed to decode symbol %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// References returns every line across the index that mentions name.
func (r *Reader) References(name string) ([]Reference, error) {
	rows, err := sq.Select("file_path", "name", "line").
		From("refs").
		Where(sq.Eq{"name": name}).
		OrderBy("file_path", "line").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query references for %s: %w", name, err)
	}
	defer rows.Close()

	out := []Reference{}
	for rows.Next() {
		var ref Reference
		if err := rows.Scan(&ref.FilePath, &ref.Name, &ref.Line); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// Relationships returns every stored relationship in insertion order.
func (r *Reader) Relationships() ([]Relationship, error) {
	rows, err := sq.Select("id", "file_path", "from_name", "from_kind", "relation", "to_name").
		From("relationships").
		OrderBy("file_path", "rowid").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	out := []Relationship{}
	for rows.Next() {
		var (
			rel  Relationship
			kind string
		)
		if err := rows.Scan(&rel.ID, &rel.FilePath, &rel.FromName, &kind, &rel.Relation, &rel.ToName); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rel.FromKind = symbols.Kind(kind)
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// LastRun returns the most recently started index run, or ErrNotFound.
func (r *Reader) LastRun() (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	err := sq.Select("id", "started_at", "finished_at", "files_indexed", "files_skipped", "files_removed", "error").
		From("index_runs").
		OrderBy("started_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow().
		Scan(&run.ID, &startedAt, &finishedAt, &run.FilesIndexed, &run.FilesSkipped, &run.FilesRemoved, &run.Error)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no index runs", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if finishedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}

// Stats summarizes the index contents.
func (r *Reader) Stats() (*Stats, error) {
	stats := &Stats{ByKind: make(map[symbols.Kind]int)}

	counts := []struct {
		table string
		dest  *int
	}{
		{"files", &stats.Files},
		{"symbols", &stats.Symbols},
		{"refs", &stats.References},
		{"relationships", &stats.Relationships},
	}
	for _, c := range counts {
		if err := sq.Select("COUNT(*)").From(c.table).RunWith(r.db).QueryRow().Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	rows, err := sq.Select("kind", "COUNT(*)").From("symbols").GroupBy("kind").RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to count symbols by kind: %w", err)
	}
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan kind count: %w", err)
		}
		stats.ByKind[symbols.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	rows.Close()

	run, err := r.LastRun()
	switch {
	case err == nil:
		stats.LastRun = run
	case !isNotFound(err):
		return nil, err
	}
	return stats, nil
}
