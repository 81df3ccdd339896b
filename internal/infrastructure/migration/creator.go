package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// versionLayout orders migration files lexicographically by creation
// time, which is how golang-migrate sequences them.
const versionLayout = "20060102150405"

// MigrationFile describes a freshly created up/down pair.
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty up/down SQL pair into migrationsDir,
// creating the directory if needed. The description only appears in the
// file headers.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format(versionLayout)
	base := version + "_" + slugify(name)

	mf := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}

	header := func(suffix string) string {
		var b strings.Builder
		fmt.Fprintf(&b, "-- %s%s\n", name, suffix)
		fmt.Fprintf(&b, "-- Created: %s\n", now.Format(time.RFC3339))
		if description != "" {
			fmt.Fprintf(&b, "-- %s\n", description)
		}
		b.WriteString("\n")
		return b.String()
	}

	if err := os.WriteFile(mf.UpPath, []byte(header("")), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(header(" (rollback)")), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

// slugify lowers a migration name into the snake_case file-name form,
// dropping anything that is not alphanumeric.
func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := true // suppress a leading separator
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the migration pairs in a
// directory. A missing directory is an empty list, not an error.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
