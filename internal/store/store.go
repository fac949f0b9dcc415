// Package store provides the option store that backs the repo cache and the
// site settings: a flat key/value table with get, set, delete and a bounded
// LIKE-pattern delete.
//
// Four backends are available: Memory for tests and one-shot runs, File for
// a directory of JSON files, SQLite for an options table, and Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Common store errors.
var (
	ErrInvalidKey     = errors.New("option key cannot be empty")
	ErrClosed         = errors.New("option store is closed")
	ErrUnknownBackend = errors.New("unknown option store backend")
)

// Store is a key/value option table.
//
// Get reports a missing key as (nil, false, nil); errors are reserved for
// backend failures. DeleteMatching removes at most limit keys matching a SQL
// LIKE pattern ("%" any run, "_" any single character) and returns how many
// were removed. A limit <= 0 removes every match.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteMatching(ctx context.Context, pattern string, limit int) (int, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `yaml:"backend"`
	// Dir is the directory for the file backend.
	Dir string `yaml:"dir,omitempty"`
	// DSN is the database path for the sqlite backend.
	DSN string `yaml:"dsn,omitempty"`
	// Addr is a redis:// URL or host:port for the redis backend.
	Addr string `yaml:"addr,omitempty"`
	// Prefix namespaces redis keys.
	Prefix string `yaml:"prefix,omitempty"`
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.Dir)
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.DSN)
	case BackendRedis:
		return OpenRedis(ctx, cfg.Addr, cfg.Prefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// likeRegexp translates a SQL LIKE pattern into an anchored, case-insensitive
// regular expression. ASCII case folding matches SQLite and MySQL defaults.
func likeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?is)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}
