package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const ensureTableSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Migration is one embedded SQL file; Version is the file name without ".sql".
type Migration struct {
	Version string
	File    string
}

// Migrations lists the embedded migrations in apply order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		out = append(out, Migration{Version: strings.TrimSuffix(e.Name(), ".sql"), File: e.Name()})
	}
	slices.SortFunc(out, func(a, b Migration) int { return strings.Compare(a.Version, b.Version) })
	return out, nil
}

// Pending returns the embedded migrations not yet recorded in schema_migrations.
func Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	if _, err := db.ExecContext(ctx, ensureTableSQL); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}
	all, err := Migrations()
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, m := range all {
		applied, existsErr := isApplied(ctx, db, m)
		if existsErr != nil {
			return nil, existsErr
		}
		if !applied {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Run applies every pending migration, each in its own transaction, and
// returns the number applied. It is safe to call repeatedly.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrations")

	pending, err := Pending(ctx, db)
	if err != nil {
		return 0, err
	}
	for i, m := range pending {
		logger.InfoContext(ctx, "applying migration", "version", m.Version)
		if applyErr := apply(ctx, db, m, logger); applyErr != nil {
			return i, applyErr
		}
	}
	return len(pending), nil
}

func isApplied(ctx context.Context, db *sql.DB, m Migration) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`
	if err := db.QueryRowContext(ctx, query, m.Version).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", m.File, err)
	}
	return exists, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration, logger *slog.Logger) error {
	sqlBytes, err := migrationsFS.ReadFile("migrations/" + m.File)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", m.File, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "failed to rollback transaction", "err", rollbackErr, "migration_file", m.File)
		}
	}()

	if _, execErr := tx.ExecContext(ctx, string(sqlBytes)); execErr != nil {
		return fmt.Errorf("exec migration %s: %w", m.File, execErr)
	}
	if _, insErr := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); insErr != nil {
		return fmt.Errorf("record migration %s: %w", m.File, insErr)
	}
	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit migration %s: %w", m.File, commitErr)
	}
	return nil
}
