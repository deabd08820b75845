package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const DefaultMigrationsPath = "file://migrations"

var (
	errDBPathIsEmpty = errors.New("database path is empty")
	errDBInit        = errors.New("database init error")
	errDBPing        = errors.New("database ping error")
	errMigration     = errors.New("migration error")
)

func NewDatabase(ctx context.Context, dbUrl, migrationsPath string, logger *zap.Logger) (*pgxpool.Pool, error) {
	if dbUrl == "" {
		return nil, errDBPathIsEmpty
	}

	pool, err := pgxpool.New(ctx, dbUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDBInit, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", errDBPing, err)
	}

	if err := RunMigrations(dbUrl, migrationsPath, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func RunMigrations(dbUrl, migrationsPath string, logger *zap.Logger) error {
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}

	mg, err := migrate.New(migrationsPath, dbUrl)
	if err != nil {
		return fmt.Errorf("%w: init: %w", errMigration, err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("%w: version check: %w", errMigration, err)
	}

	if dirty {
		logger.Warn("database is in dirty state, forcing version", zap.Uint("version", version))
		if err := mg.Force(int(version)); err != nil {
			return fmt.Errorf("%w: force version: %w", errMigration, err)
		}
		logger.Debug("dirty state cleared, retrying migration")
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: up: %w", errMigration, err)
	}

	logger.Debug("migration run ok")
	return nil
}
