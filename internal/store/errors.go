package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrConnection is returned when the database cannot be opened
	ErrConnection = errors.New("connecting to database failed")

	// ErrExecution is returned when a statement fails
	ErrExecution = errors.New("executing statement failed")

	// ErrMigration is returned when the schema cannot be brought up to date
	ErrMigration = errors.New("migrating database failed")

	// ErrInvalidInput is returned for values the store refuses to persist
	ErrInvalidInput = errors.New("invalid input")

	// ErrSettingNotFound is returned when a setting has never been saved
	ErrSettingNotFound = errors.New("setting not found")
)

func connectionError(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

func executionError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExecution, op, err)
}

// IsUniqueViolation reports whether err is a SQLite unique constraint failure
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
