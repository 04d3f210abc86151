package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"relytailors-be/internal/config"
	"relytailors-be/internal/db"
	"relytailors-be/internal/logger"

	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory holding *.sql migrations")
	flag.Parse()

	cfg, err := config.LoadDatabase()
	if err != nil {
		logger.L().Fatal("database config not loaded", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("failed to connect db", zap.Error(err))
	}
	defer database.Close()

	if err := run(context.Background(), database, *mode, *dir); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}
}

func run(ctx context.Context, db *sql.DB, mode, migrationsDir string) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return runMigrationsUp(ctx, db, files)
	case "down":
		return runMigrationsDown(ctx, db, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

// runMigrationsUp applies every file not yet recorded, each in its own
// transaction together with its schema_migrations row.
func runMigrationsUp(ctx context.Context, db *sql.DB, files []string) error {
	log := logger.L().With(zap.String("mode", "up"))

	applied := 0
	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			log.Debug("skipping applied migration", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		log.Info("applying migration", zap.String("version", version))
		err = inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, extractMigrationPart(string(content), "Up")); err != nil {
				return fmt.Errorf("migration %s: %w", version, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("failed to record migration version: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		applied++
	}

	log.Info("migrations up to date", zap.Int("applied", applied))
	return nil
}

// runMigrationsDown rolls back the most recently applied migration only.
func runMigrationsDown(ctx context.Context, db *sql.DB, files []string) error {
	log := logger.L().With(zap.String("mode", "down"))

	var lastVersion string
	err := db.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&lastVersion)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	filePath := ""
	for _, f := range files {
		if filepath.Base(f) == lastVersion {
			filePath = f
			break
		}
	}
	if filePath == "" {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	log.Info("rolling back migration", zap.String("version", lastVersion))
	return inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, extractMigrationPart(string(content), "Down")); err != nil {
			return fmt.Errorf("rollback %s: %w", lastVersion, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schema_migrations WHERE version = $1`, lastVersion); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func extractMigrationPart(content string, section string) string {
	var part strings.Builder
	var inPart bool

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "-- +migrate "+section) {
			inPart = true
			continue
		}
		if inPart && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
