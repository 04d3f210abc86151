package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE orders (id uuid);
ALTER TABLE orders ADD COLUMN order_status text;

-- +migrate Down
DROP TABLE orders;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE orders")
		assert.Contains(t, up, "ALTER TABLE orders")
		assert.NotContains(t, up, "DROP TABLE orders")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE orders")
		assert.NotContains(t, down, "CREATE TABLE orders")
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunMigrationsUp(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies pending", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dir := t.TempDir()
		applied := writeMigration(t, dir, "0001_users.sql", "-- +migrate Up\nCREATE TABLE users (id int);")
		pending := writeMigration(t, dir, "0002_orders.sql", "-- +migrate Up\nCREATE TABLE orders (id uuid);\n-- +migrate Down\nDROP TABLE orders;")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_users.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0002_orders.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE orders").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("0002_orders.sql").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		assert.NoError(t, runMigrationsUp(ctx, db, []string{applied, pending}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		file := writeMigration(t, t.TempDir(), "0003_bad.sql", "-- +migrate Up\nCREATE TABLE broken (;")

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0003_bad.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE broken").
			WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err = runMigrationsUp(ctx, db, []string{file})
		assert.ErrorContains(t, err, "0003_bad.sql")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunMigrationsDown(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing applied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}))

		assert.NoError(t, runMigrationsDown(ctx, db, nil))
	})

	t.Run("Rolls back latest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		file := writeMigration(t, t.TempDir(), "0002_orders.sql",
			"-- +migrate Up\nCREATE TABLE orders (id uuid);\n-- +migrate Down\nDROP TABLE orders;")

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0002_orders.sql"))
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE orders").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM schema_migrations").
			WithArgs("0002_orders.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, runMigrationsDown(ctx, db, []string{file}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing file", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0009_gone.sql"))

		err = runMigrationsDown(ctx, db, nil)
		assert.ErrorContains(t, err, "migration file not found")
	})
}

func TestRun_UnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(context.Background(), db, "sideways", t.TempDir())
	assert.ErrorContains(t, err, "unknown mode")
}

func TestRun_RealMigrationsParse(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Up"), f)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Down"), f)
	}
}
