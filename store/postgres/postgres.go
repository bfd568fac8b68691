package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type PostgresDashboardStore struct {
	db *sql.DB
}

func NewPostgresDashboardStore(ctx context.Context, dsn string) (*PostgresDashboardStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return &PostgresDashboardStore{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *PostgresDashboardStore {
	return &PostgresDashboardStore{db: db}
}

func (s *PostgresDashboardStore) Close() error {
	return s.db.Close()
}

// Migrate applies all pending schema migrations.
func (s *PostgresDashboardStore) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}
