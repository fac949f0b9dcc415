package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const createOptionsTable = `CREATE TABLE IF NOT EXISTS options (
	option_name  TEXT PRIMARY KEY,
	option_value BLOB NOT NULL,
	updated_at   INTEGER NOT NULL
)`

// SQLite keeps options in a single options table, the same shape as a
// WordPress options/sitemeta table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn and ensures the
// options table exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	if dsn == "" {
		return nil, errors.New("sqlite dsn cannot be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, createOptionsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating options table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get returns the option value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT option_value FROM options WHERE option_name = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading option %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the option.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO options (option_name, option_value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(option_name) DO UPDATE SET
		   option_value = excluded.option_value,
		   updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing option %s: %w", key, err)
	}
	return nil
}

// Delete removes the option.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM options WHERE option_name = ?`, key); err != nil {
		return fmt.Errorf("deleting option %s: %w", key, err)
	}
	return nil
}

// DeleteMatching deletes up to limit options whose name is LIKE pattern.
// SQLite builds without DELETE ... LIMIT, so the bound goes in a subquery.
func (s *SQLite) DeleteMatching(ctx context.Context, pattern string, limit int) (int, error) {
	if limit <= 0 {
		limit = -1
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM options WHERE option_name IN (
		   SELECT option_name FROM options WHERE option_name LIKE ? ORDER BY option_name LIMIT ?
		 )`, pattern, limit)
	if err != nil {
		return 0, fmt.Errorf("deleting options like %s: %w", pattern, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted options: %w", err)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
