package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"relytailors-be/internal/config"
	"relytailors-be/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// InitDB opens the Postgres pool or exits the process.
func InitDB(cfg *config.Config) *sql.DB {
	db, err := NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("database unavailable", zap.Error(err))
	}

	logger.L().Info("database connection established",
		zap.String("host", cfg.DBHost),
		zap.String("name", cfg.DBName),
	)
	return db
}

func NewDatabase(cfg *config.Config) (*sql.DB, error) {
	return newDatabaseWithDriver(cfg, "postgres")
}

func newDatabaseWithDriver(cfg *config.Config, driver string) (*sql.DB, error) {
	db, err := sql.Open(driver, buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}
