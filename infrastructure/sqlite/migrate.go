package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/uptrace/bun"

	"userdesk/models"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// ApplyMigrations applies pending *.sql files in lexical order and returns their names.
//
// If migrationsDir is empty, embedded migrations are applied.
func ApplyMigrations(ctx context.Context, db *DB, migrationsDir string) ([]string, error) {
	if strings.TrimSpace(migrationsDir) == "" {
		return ApplyEmbeddedMigrations(ctx, db)
	}
	return ApplyMigrationsFromDir(ctx, db, migrationsDir)
}

func ApplyEmbeddedMigrations(ctx context.Context, db *DB) ([]string, error) {
	return applyMigrationsFromFS(ctx, db, embeddedMigrations, "migrations")
}

func ApplyMigrationsFromDir(ctx context.Context, db *DB, migrationsDir string) ([]string, error) {
	if _, err := os.Stat(migrationsDir); err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	return applyMigrationsFromFS(ctx, db, os.DirFS(migrationsDir), ".")
}

// AppliedMigrations lists the migrations recorded in schema_migrations.
func AppliedMigrations(ctx context.Context, db *DB) ([]string, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}
	var names []string
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model((*models.SchemaMigration)(nil)).Column("name").Order("name ASC").Scan(ctx, &names)
	})
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return names, nil
}

func applyMigrationsFromFS(ctx context.Context, db *DB, migrationsFS fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations fs: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if path.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	done, err := AppliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(done))
	for _, name := range done {
		seen[name] = true
	}

	var applied []string
	for _, name := range files {
		if seen[name] {
			continue
		}
		sqlBytes, err := fs.ReadFile(migrationsFS, path.Join(root, name))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applySingleMigration(ctx, db, name, sqlBytes); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}

func ensureMigrationsTable(ctx context.Context, db *DB) error {
	if db == nil || db.WriteSQL == nil {
		return fmt.Errorf("migrations: %w", ErrNotInitialized)
	}
	if _, err := db.WriteSQL.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func applySingleMigration(ctx context.Context, db *DB, name string, sqlBytes []byte) error {
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&models.SchemaMigration{Name: name}).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}
