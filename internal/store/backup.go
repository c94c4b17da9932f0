package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backup writes a consistent copy of the database to dest, which must not
// exist yet
func (s *Store) Backup(ctx context.Context, dest string) error {
	if dest == "" {
		return fmt.Errorf("%w: backup path is empty", ErrInvalidInput)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: backup file already exists: %s", ErrInvalidInput, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		s.logger.Error("Failed to back up database", "path", s.path, "dest", dest, "error", err)
		return executionError("backup", err)
	}

	s.logger.Info("Backed up database", "path", s.path, "dest", dest)
	return nil
}
