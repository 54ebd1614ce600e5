// Package store implements the tag-indexed media storage and query engine:
// the tag dictionary, entity records, per-user tag associations, usage
// counters, multi-tag search, bulk archive transfer, and the repair scan.
//
// All mutating operations scope their writes to a single user and run in
// exactly one transaction; partial application is never observable. Reads
// are snapshot reads through the storage engine's default isolation.
package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// PageSize is the fixed number of entities per result page.
const PageSize = 50

// insertChunkSize bounds the number of rows per bulk INSERT so the
// statement stays well under SQLite's bound-variable limit.
const insertChunkSize = 1000

// Clock returns the current wall-clock time as epoch milliseconds.
type Clock func() int64

// Store is the shared handle over the four underlying stores. One Store is
// created per process and passed by reference into every operation; the
// *sql.DB inside pools connections for concurrent request handlers.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    Clock
}

// New creates a Store over an opened, migrated database.
func New(db *sql.DB, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		db:     db,
		logger: logger,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock replaces the wall-clock source. Used by tests to pin
// created_at/last_used values and cooldown comparisons.
func (s *Store) WithClock(clock Clock) *Store {
	s.now = clock
	return s
}

// DB exposes the underlying handle for callers that layer their own reads
// on top of the core (diagnostics, CLI output).
func (s *Store) DB() *sql.DB {
	return s.db
}

// sqlExecer is the subset of *sql.Tx (and *sql.DB) the transaction-scoped
// helpers need.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// chunk splits items into slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	var chunks [][]T
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size])
	}
	return append(chunks, items)
}
