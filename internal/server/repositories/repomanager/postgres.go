// Package repomanager selects and opens the credential store backend
// (MongoDB, PostgreSQL or in-memory) and prepares its schema.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/migrations"
	"github.com/dmitrijs2005/cakelibrary/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over a
// single *sql.DB pool.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// sqlOpen and gooseUpContext are seams for tests.
var sqlOpen = sql.Open

var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresRepositoryManager opens dsn with the pgx driver and pings it.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: db open: %v", common.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: db ping: %v", common.ErrStorageUnavailable, err)
	}

	return &PostgresRepositoryManager{db: db}, nil
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.db)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
