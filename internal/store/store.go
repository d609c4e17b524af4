// ABOUTME: Store interface and record types for execution-history persistence
// ABOUTME: Defines ExecutionRecord and the operations the SQLite store implements

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Terminal status values for an execution record.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ExecutionRecord is one finished script execution: what ran, with which
// parameters, and how it ended.
type ExecutionRecord struct {
	ID         string         `json:"id"`
	Script     string         `json:"script"`
	Params     map[string]any `json:"params,omitempty"`
	Lang       string         `json:"lang,omitempty"`
	Status     string         `json:"status"` // "ok" or "error"
	Result     any            `json:"result,omitempty"` // terminal payload on success
	Error      string         `json:"error,omitempty"`  // rendered fault on failure
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// ScriptOverview summarizes the stored history for one script.
type ScriptOverview struct {
	Script       string    `json:"script"`
	TotalRecords int       `json:"total_records"`
	Latest       time.Time `json:"latest"`
}

// Store is the persistence interface for execution history.
type Store interface {
	SaveExecution(ctx context.Context, rec *ExecutionRecord) error
	GetExecution(ctx context.Context, id string) (*ExecutionRecord, error)
	// ListExecutions returns records for one script, newest first, capped at limit.
	ListExecutions(ctx context.Context, scriptPath string, limit int) ([]*ExecutionRecord, error)
	ListOverview(ctx context.Context) ([]*ScriptOverview, error)
	DeleteExecution(ctx context.Context, id string) error
	// DeleteScriptHistory removes all records for a script and returns how many.
	DeleteScriptHistory(ctx context.Context, scriptPath string) (int64, error)
	Close() error
}
