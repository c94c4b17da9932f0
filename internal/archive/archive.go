// Package archive keeps timestamped copies of the phrase database.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backuper writes a consistent copy of a database to a new file
type Backuper interface {
	Path() string
	Backup(ctx context.Context, dest string) error
}

// Dir returns the archive directory that sits next to the database file
func Dir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "archive")
}

// ArchiveDatabase copies the database into its archive directory under a
// timestamped name and returns the path of the copy
func ArchiveDatabase(ctx context.Context, db Backuper) (string, error) {
	dbPath := db.Path()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", dbPath)
	}

	archiveDir := Dir(dbPath)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := uniquePath(archiveDir, dbPath, time.Now())
	if err := db.Backup(ctx, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive database: %w", err)
	}

	return archivePath, nil
}

// uniquePath builds <base>-YYYYMMDD-HHMMSS<ext>, adding microseconds when a
// copy from the same second already exists
func uniquePath(archiveDir, dbPath string, now time.Time) string {
	ext := filepath.Ext(dbPath)
	base := strings.TrimSuffix(filepath.Base(dbPath), ext)

	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405"), ext))
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405.000000"), ext))
	}
	return archivePath
}
