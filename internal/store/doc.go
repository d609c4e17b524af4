// Package store provides execution-history persistence for script-gateway.
//
// # Overview
//
// The Store interface covers saving, listing, and deleting execution
// records; SQLiteStore is the only implementation, backed by the pure-Go
// modernc.org/sqlite driver with WAL mode and automatic schema creation.
//
// # Records
//
// One ExecutionRecord is saved per finished execution: the script path,
// request parameters, terminal status, and the result or rendered error.
// Timestamps are stored as fixed-width RFC 3339 text so that newest-first
// listings order correctly under SQLite's lexicographic comparison.
//
// # Usage
//
//	s, err := store.NewSQLiteStore("/var/lib/script-gateway/gateway.db")
//	defer s.Close()
//	recs, err := s.ListExecutions(ctx, "beginner/sma_strategy", 20)
//
// Missing records surface as ErrNotFound.
package store
