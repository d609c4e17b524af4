// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides execution-history persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds so that stored
// timestamps order correctly under SQLite's lexicographic TEXT comparison.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path ( ":memory:"
// for tests). The schema is created if it doesn't exist, and parent
// directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			script TEXT NOT NULL,
			params TEXT,
			lang TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			result TEXT,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_executions_script
			ON executions(script, created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveExecution persists one finished execution record.
func (s *SQLiteStore) SaveExecution(ctx context.Context, rec *ExecutionRecord) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO executions (id, script, params, lang, status, result, error, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Script, string(params), rec.Lang, rec.Status,
		string(result), rec.Error,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

// GetExecution retrieves a single record by ID. Returns ErrNotFound when absent.
func (s *SQLiteStore) GetExecution(ctx context.Context, id string) (*ExecutionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, script, params, lang, status, result, error, created_at, finished_at
		FROM executions WHERE id = ?`, id)

	rec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying execution: %w", err)
	}
	return rec, nil
}

// ListExecutions returns a script's records, newest first.
func (s *SQLiteStore) ListExecutions(ctx context.Context, scriptPath string, limit int) ([]*ExecutionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, script, params, lang, status, result, error, created_at, finished_at
		FROM executions WHERE script = ?
		ORDER BY created_at DESC LIMIT ?`, scriptPath, limit)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	var recs []*ExecutionRecord
	for rows.Next() {
		rec, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning execution: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ListOverview returns per-script record counts and latest timestamps.
func (s *SQLiteStore) ListOverview(ctx context.Context) ([]*ScriptOverview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT script, COUNT(*), MAX(created_at)
		FROM executions GROUP BY script ORDER BY script`)
	if err != nil {
		return nil, fmt.Errorf("querying overview: %w", err)
	}
	defer rows.Close()

	var out []*ScriptOverview
	for rows.Next() {
		var o ScriptOverview
		var latest string
		if err := rows.Scan(&o.Script, &o.TotalRecords, &latest); err != nil {
			return nil, fmt.Errorf("scanning overview: %w", err)
		}
		if o.Latest, err = time.Parse(timeLayout, latest); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// DeleteExecution removes one record by ID. Returns ErrNotFound when absent.
func (s *SQLiteStore) DeleteExecution(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM executions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting execution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteScriptHistory removes all records for a script.
func (s *SQLiteStore) DeleteScriptHistory(ctx context.Context, scriptPath string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM executions WHERE script = ?`, scriptPath)
	if err != nil {
		return 0, fmt.Errorf("deleting script history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(row scanner) (*ExecutionRecord, error) {
	var rec ExecutionRecord
	var params, result, created, finished string
	err := row.Scan(&rec.ID, &rec.Script, &params, &rec.Lang, &rec.Status,
		&result, &rec.Error, &created, &finished)
	if err != nil {
		return nil, err
	}

	if params != "" {
		if err := json.Unmarshal([]byte(params), &rec.Params); err != nil {
			return nil, fmt.Errorf("unmarshaling params: %w", err)
		}
	}
	if result != "" {
		if err := json.Unmarshal([]byte(result), &rec.Result); err != nil {
			return nil, fmt.Errorf("unmarshaling result: %w", err)
		}
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	return &rec, nil
}
