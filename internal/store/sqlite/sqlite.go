// Package sqlite is the sqlite-backed implementation of store.Store: a
// pure-Go driver (modernc.org/sqlite), a single-writer connection pool
// (MaxOpenConns(1)), WAL journaling, and BEGIN IMMEDIATE + exponential
// backoff for SQLITE_BUSY contention.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"

	"github.com/Taj-Howe/planner-kernel/internal/log"
	"github.com/Taj-Howe/planner-kernel/internal/store"
)

// execer is the subset of *sql.DB / *sql.Tx the Reader/Tx implementations
// need; it lets the query bodies below be shared between top-level reads
// and in-transaction reads without duplication.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is the top-level store.Store handle.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite-backed store at path, brings
// it to the latest migration, and configures the single-writer pool.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// Single-writer: the kernel's concurrency model requires
	// writes to be serialized; one connection rules that out structurally
	// rather than relying on BEGIN IMMEDIATE discipline alone.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	log.L().Infow("store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// beginImmediateWithRetry acquires a dedicated connection and issues a raw
// "BEGIN IMMEDIATE" on it, retrying on SQLITE_BUSY with exponential backoff.
// database/sql's BeginTx doesn't support sqlite transaction modes and
// modernc.org/sqlite always opens BeginTx transactions DEFERRED, so the
// IMMEDIATE lock has to be requested as raw SQL on a connection pinned for
// the transaction's lifetime rather than through *sql.Tx.
func beginImmediateWithRetry(ctx context.Context, db *sql.DB) (*sql.Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	op := func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		return err
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// WithTx runs fn inside a single exclusive write transaction.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(store.Tx) error) (retErr error) {
	conn, err := beginImmediateWithRetry(ctx, s.db)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
		_ = conn.Close()
	}()

	start := time.Now()
	if err := fn(&sqlTx{conn: conn}); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	log.L().Debugw("transaction committed", "duration", time.Since(start))
	return nil
}

// sqlTx implements store.Tx over a connection pinned to an active
// BEGIN IMMEDIATE transaction.
type sqlTx struct {
	conn *sql.Conn
}
