package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/hanzi/internal/phrase"
)

// LoadSetting returns the stored value of a setting, or ErrSettingNotFound
func (s *Store) LoadSetting(ctx context.Context, name phrase.SettingName) (string, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name.String()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	}
	if err != nil {
		s.logger.Error("Failed to load setting", "name", name, "error", err)
		return "", executionError("load setting", err)
	}
	return value, nil
}

// SaveSetting stores value under name, replacing any previous value
func (s *Store) SaveSetting(ctx context.Context, name phrase.SettingName, value string) error {
	if strings.TrimSpace(name.String()) == "" {
		return fmt.Errorf("%w: setting name must be non-empty", ErrInvalidInput)
	}

	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `
INSERT INTO settings (name, value) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value`, name.String(), value)
	if err != nil {
		s.logger.Error("Failed to save setting", "name", name, "error", err)
		return executionError("save setting", err)
	}
	return nil
}
