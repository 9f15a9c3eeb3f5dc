// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DefaultRetries is the number of attempts for a write hitting a locked database.
const DefaultRetries = 3

// Write is one entry of an atomic batch. A nil Value deletes the key.
type Write struct {
	Key   string
	Value []byte
}

// Delete builds a Write that removes key.
func Delete(key string) Write {
	return Write{Key: key}
}

// Store is a key-value store backed by a single SQLite table.
type Store struct {
	db       *sql.DB
	attempts uint
}

// Option configures a Store.
type Option func(*Store)

// WithRetries sets how many times a busy write is attempted.
func WithRetries(n int) Option {
	return func(s *Store) {
		if n < 1 {
			n = 1
		}
		s.attempts = uint(n)
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db, attempts: DefaultRetries}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.Commit(ctx, Write{Key: key, Value: value})
}

// Remove deletes the given keys. Missing keys are ignored.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	writes := make([]Write, len(keys))
	for i, key := range keys {
		writes[i] = Delete(key)
	}
	return s.Commit(ctx, writes...)
}

// Commit applies all writes in one transaction.
func (s *Store) Commit(ctx context.Context, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}
	return retry.Do(
		func() error {
			return s.commitOnce(ctx, writes)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(20*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
	)
}

func (s *Store) commitOnce(ctx context.Context, writes []Write) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, w := range writes {
		if w.Value == nil {
			if _, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, w.Key); err != nil {
				return err
			}
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			w.Key, w.Value, now,
		); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// Keys lists the stored keys in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
