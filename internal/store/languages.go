package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ResolveLanguage returns the id of the language with the given code,
// inserting {name, code} first if no such language exists.
func (s *Store) ResolveLanguage(ctx context.Context, code, name string) (int64, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return s.resolveLanguage(ctx, db, code, name)
}

// resolveLanguage is a read followed by a conditional insert. Two concurrent
// resolutions of an unseen code can race; the loser gets the unique
// constraint failure as an execution error.
func (s *Store) resolveLanguage(ctx context.Context, ex executor, code, name string) (int64, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return 0, fmt.Errorf("%w: language code must be non-empty", ErrInvalidInput)
	}
	if name == "" {
		name = code
	}

	var id int64
	err := ex.QueryRowContext(ctx, `SELECT id FROM languages WHERE code = ?`, code).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("Failed to look up language", "code", code, "error", err)
		return 0, executionError("select language", err)
	}

	res, err := ex.ExecContext(ctx, `INSERT INTO languages (name, code) VALUES (?, ?)`, name, code)
	if IsUniqueViolation(err) {
		s.logger.Warn("Language was inserted concurrently", "code", code, "error", err)
		return 0, executionError("insert language", err)
	}
	if err != nil {
		s.logger.Error("Failed to insert language", "code", code, "error", err)
		return 0, executionError("insert language", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, executionError("insert language", err)
	}

	s.logger.Info("Created language", "code", code, "name", name, "id", id)
	return id, nil
}
