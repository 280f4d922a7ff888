package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ApplyMigrations runs every "up" migration in lexical order.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := execMigration(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}

// ApplyMigration runs the single migration file whose name ends in "<name>.sql",
// e.g. "create_votes.up" or "create_votes.down".
func ApplyMigration(ctx context.Context, db *sql.DB, name string) error {
	file, err := migrationFileName(name)
	if err != nil {
		return err
	}
	return execMigration(ctx, db, file)
}

func migrationFileName(migrationName string) (string, error) {
	pattern := fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName))
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid migration name %q: %w", migrationName, err)
	}

	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return "", fmt.Errorf("failed to read migrations directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if regex.MatchString(entry.Name()) {
			return entry.Name(), nil
		}
	}
	return "", fmt.Errorf("migration file not found: %s", migrationName)
}

func execMigration(ctx context.Context, db *sql.DB, file string) error {
	content, err := fs.ReadFile(migrationFiles, "migrations/"+file)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", file, err)
	}
	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", file, err)
	}
	return nil
}
