package db

import (
	"cmp"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema/schema.sql
var schemaSQL string

// FileName is the database file created inside the data directory.
const FileName = "tick.db"

// pingAttempts bounds how long Open waits for a locked database file.
const (
	pingAttempts  = 5
	pingFirstWait = 100 * time.Millisecond
)

// OpenOptions tunes the sqlite connection pool. Zero fields take the
// values from DefaultOpenOptions.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

// DefaultOpenOptions returns the pool settings used when config leaves them unset.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{MaxOpenConns: 4, MaxIdleConns: 2, BusyTimeout: 5000}
}

func (o OpenOptions) withDefaults() OpenOptions {
	d := DefaultOpenOptions()
	return OpenOptions{
		MaxOpenConns: cmp.Or(max(o.MaxOpenConns, 0), d.MaxOpenConns),
		MaxIdleConns: cmp.Or(max(o.MaxIdleConns, 0), d.MaxIdleConns),
		BusyTimeout:  cmp.Or(max(o.BusyTimeout, 0), d.BusyTimeout),
	}
}

// DB is the sqlite handle behind the kv and notification stores.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open opens (creating if needed) dataDir/tick.db in WAL mode and applies
// the schema.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	opts = opts.withDefaults()

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		filepath.Join(dataDir, FileName), opts.BusyTimeout)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)

	ctx := context.Background()
	if err := waitReady(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{conn: conn, queries: New(conn)}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Queries returns the typed query set bound to the pool.
func (db *DB) Queries() *Queries {
	return db.queries
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(db.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// waitReady pings conn, doubling the wait after each failure.
func waitReady(ctx context.Context, conn *sql.DB) error {
	var err error
	for attempt, wait := 1, pingFirstWait; ; attempt, wait = attempt+1, wait*2 {
		if err = conn.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			return fmt.Errorf("database not ready after %d attempts: %w", pingAttempts, err)
		}
		time.Sleep(wait)
	}
}
