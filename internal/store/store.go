package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

// DefaultLanguage is used for phrases saved without language information
var DefaultLanguage = phrase.Language{Name: "Chinese", Code: "zh"}

// Config configures a Store
type Config struct {
	// Path of the SQLite database file
	Path string
	// DefaultLanguage replaces a missing phrase language on save
	DefaultLanguage phrase.Language
	Logger          *slog.Logger
}

// Store is the SQLite backed phrase and settings store. It holds no open
// connection between calls.
type Store struct {
	path            string
	defaultLanguage phrase.Language
	logger          *slog.Logger
}

// executor is satisfied by both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open prepares the database file at cfg.Path and applies pending migrations
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrConnection)
	}

	s := &Store{
		path:            cfg.Path,
		defaultLanguage: cfg.DefaultLanguage,
		logger:          cfg.Logger,
	}
	if s.defaultLanguage.IsZero() {
		s.defaultLanguage = DefaultLanguage
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, connectionError(fmt.Errorf("create database directory: %w", err))
		}
	}

	db, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := migrate(ctx, db, s.logger); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// dsn builds the SQLite URI for path. The path is escaped so that '?', '#'
// and '%' in file names are not read as URI syntax.
func dsn(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", escaped)
}

// connect opens and verifies a fresh connection; the caller closes it
func (s *Store) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(s.path))
	if err != nil {
		s.logger.Error("No connection to database", "path", s.path, "error", err)
		return nil, connectionError(err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		s.logger.Error("No connection to database", "path", s.path, "error", err)
		return nil, connectionError(err)
	}

	return db, nil
}
