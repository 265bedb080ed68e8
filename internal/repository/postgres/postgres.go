package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Houeta/price-sentinel/internal/config"
)

// Repository is the Postgres-backed store for products and their price
// history. It holds the database handle and a logger instance.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRepository opens a connection to Postgres, verifies it and applies
// pending schema migrations. It returns a pointer to the newly created
// Repository.
func NewRepository(ctx context.Context, log *slog.Logger, cfg config.Database) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)

	dtb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Check if the connection is actually established.
	if err = dtb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	if err = runMigrations(dtb, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("DB schema migration error: %w", err)
	}

	return &Repository{db: dtb, log: log}, nil
}

// runMigrations applies all pending migrations from the given directory.
func runMigrations(dtb *sql.DB, path string) error {
	driver, err := migratepg.WithInstance(dtb, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// NewForTest wraps an existing database handle (e.g. sqlmock) without
// connecting or migrating.
func NewForTest(dtb *sql.DB) *Repository {
	return &Repository{db: dtb, log: slog.Default()}
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.postgres.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}
