package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// maxBatchKeys bounds the number of placeholders per statement.
const maxBatchKeys = 500

// SQLite persists keys in a single kv_items table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite initializes or connects to the cache database and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("kvstore: sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("kvstore: create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLite{db: db}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, mapClosed(err))
	}
	return value, true, nil
}

func (s *SQLite) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	found := make(map[string][]byte, len(keys))
	for _, batch := range chunk(keys) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT key, value FROM kv_items WHERE key IN (`+makePlaceholders(len(batch))+`)`,
			toArgs(batch)...)
		if err != nil {
			return nil, fmt.Errorf("get many: %w", mapClosed(err))
		}
		for rows.Next() {
			var (
				key   string
				value []byte
			)
			if err := rows.Scan(&key, &value); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan kv item: %w", err)
			}
			found[key] = value
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate kv items: %w", err)
		}
	}
	return found, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertSQL, key, nonNil(value), time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("set %s: %w", key, mapClosed(err))
	}
	return nil
}

func (s *SQLite) SetMany(ctx context.Context, items map[string][]byte) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set many: %w", mapClosed(err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("prepare set many: %w", err)
	}
	defer stmt.Close()

	stamp := time.Now().UTC().UnixMilli()
	for key, value := range items {
		if _, err := stmt.ExecContext(ctx, key, nonNil(value), stamp); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set many: %w", err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_items WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, mapClosed(err))
	}
	return nil
}

func (s *SQLite) RemoveMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove many: %w", mapClosed(err))
	}
	defer func() { _ = tx.Rollback() }()

	for _, batch := range chunk(keys) {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM kv_items WHERE key IN (`+makePlaceholders(len(batch))+`)`,
			toArgs(batch)...); err != nil {
			return fmt.Errorf("remove many: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove many: %w", err)
	}
	return nil
}

func (s *SQLite) RemoveAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_items`); err != nil {
		return fmt.Errorf("remove all: %w", mapClosed(err))
	}
	return nil
}

// Count returns the number of stored keys.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM kv_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count kv items: %w", mapClosed(err))
	}
	return count, nil
}

const upsertSQL = `INSERT INTO kv_items (key, value, updated_at) VALUES (?, ?, ?)
 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	return args
}

func chunk(keys []string) [][]string {
	var batches [][]string
	for len(keys) > maxBatchKeys {
		batches = append(batches, keys[:maxBatchKeys])
		keys = keys[maxBatchKeys:]
	}
	if len(keys) > 0 {
		batches = append(batches, keys)
	}
	return batches
}

func nonNil(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	return value
}

func mapClosed(err error) error {
	if err != nil && strings.Contains(err.Error(), "database is closed") {
		return errors.Join(ErrClosed, err)
	}
	return err
}
