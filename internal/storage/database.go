// Package storage persists decks, cards, and scheduling state in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// queries carries every read/write method. It is embedded in both DB and Tx
// so the same operations run inside or outside a transaction.
type queries struct {
	dbtx
	now func() time.Time
}

// DB wraps the SQL database connection.
type DB struct {
	queries
	conn *sql.DB
}

// Tx is an open transaction. All queries methods are available on it.
type Tx struct {
	queries
	tx *sql.Tx
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps PRAGMAs effective and makes ":memory:"
	// databases usable in tests; the app is single-user anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{
		queries: queries{dbtx: conn, now: time.Now},
		conn:    conn,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SetClock replaces the time source. Tests use it to pin "today".
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// Begin starts a transaction sharing the database's clock.
func (db *DB) Begin() (*Tx, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{queries: queries{dbtx: tx, now: db.now}, tx: tx}, nil
}

// WithTx runs fn inside a transaction, committing on nil and rolling back
// on error so callers never observe a partially applied write.
func (db *DB) WithTx(fn func(tx *Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const dateLayout = "2006-01-02"

// today returns the current date as a sortable YYYY-MM-DD string. Dates are
// stored and compared as strings throughout.
func (q *queries) today() string {
	return q.now().Format(dateLayout)
}

// addDays returns today's date shifted by the given number of days.
func (q *queries) addDays(days int) string {
	return q.now().AddDate(0, 0, days).Format(dateLayout)
}

// timestamp returns the current instant as an RFC 3339 UTC string.
func (q *queries) timestamp() string {
	return q.now().UTC().Format(time.RFC3339)
}
