package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/ferrite/internal/analysis"
)

// Writer handles writing analysis results to SQLite.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a Writer. DB must have schema already created via CreateSchema().
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// WriteFile replaces everything stored for rec.FilePath with res in a single
// transaction. SymbolCount, LineCount and an empty FileHash are filled from res.
func (w *Writer) WriteFile(rec FileRecord, res *analysis.Result) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := sq.Delete("files").Where(sq.Eq{"file_path": rec.FilePath}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", rec.FilePath, err)
	}

	if rec.FileHash == "" {
		rec.FileHash = res.Hash
	}
	if rec.IndexedAt.IsZero() {
		rec.IndexedAt = time.Now().UTC()
	}
	rec.LineCount = res.LineCount
	rec.SymbolCount = len(res.Symbols)

	_, err = sq.Insert("files").
		Columns("file_path", "file_hash", "line_count", "symbol_count", "size_bytes", "indexed_at").
		Values(rec.FilePath, rec.FileHash, rec.LineCount, rec.SymbolCount, rec.SizeBytes, rec.IndexedAt.Format(time.RFC3339)).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", rec.FilePath, err)
	}

	for _, s := range res.Symbols {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode symbol %s: %w", s.Name, err)
		}
		_, err = sq.Insert("symbols").
			Columns("id", "file_path", "name", "kind", "visibility", "line", "end_line",
				"signature", "doc", "why", "how", "pattern", "data").
			Values(uuid.New().String(), rec.FilePath, s.Name, string(s.Kind), string(s.Visibility), s.Line, s.EndLine,
				s.Signature, s.Doc, s.WhyItExists, s.HowItWorks, s.DesignPattern, string(data)).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to write symbol %s: %w", s.Name, err)
		}

		for _, rel := range s.Relationships {
			relation, target, ok := ParseRelationship(rel)
			if !ok {
				continue
			}
			_, err = sq.Insert("relationships").
				Columns("id", "file_path", "from_name", "from_kind", "relation", "to_name").
				Values(uuid.New().String(), rec.FilePath, s.Name, string(s.Kind), relation, target).
				RunWith(tx).
				Exec()
			if err != nil {
				return fmt.Errorf("failed to write relationship %q: %w", rel, err)
			}
		}
	}

	names := make([]string, 0, len(res.Refs))
	for name := range res.Refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines := res.Refs[name]
		if len(lines) == 0 {
			continue
		}
		insert := sq.Insert("refs").Columns("file_path", "name", "line").Options("OR IGNORE")
		for _, line := range lines {
			insert = insert.Values(rec.FilePath, name, line)
		}
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to write references for %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", rec.FilePath, err)
	}
	return nil
}

// DeleteFile removes a file and, by cascade, its symbols, references and
// relationships. It returns ErrNotFound when the file is not indexed.
func (w *Writer) DeleteFile(filePath string) error {
	res, err := sq.Delete("files").Where(sq.Eq{"file_path": filePath}).RunWith(w.db).Exec()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", filePath, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", filePath, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: file %s", ErrNotFound, filePath)
	}
	return nil
}

// StartRun records the start of an index pass and returns its ID.
func (w *Writer) StartRun() (string, error) {
	id := uuid.New().String()
	_, err := sq.Insert("index_runs").
		Columns("id", "started_at").
		Values(id, time.Now().UTC().Format(time.RFC3339Nano)).
		RunWith(w.db).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to start index run: %w", err)
	}
	return id, nil
}

// FinishRun completes the run with its counters and optional failure.
func (w *Writer) FinishRun(id string, indexed, skipped, removed int, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := sq.Update("index_runs").
		Set("finished_at", time.Now().UTC().Format(time.RFC3339Nano)).
		Set("files_indexed", indexed).
		Set("files_skipped", skipped).
		Set("files_removed", removed).
		Set("error", msg).
		Where(sq.Eq{"id": id}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish index run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return nil
}
