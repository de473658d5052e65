package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/config"
	"github.com/dmitrijs2005/cakelibrary/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection and vends the repositories
// built on it.
type RepositoryManager interface {
	// RunMigrations prepares the schema: tables for PostgreSQL, unique
	// indexes for MongoDB.
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close(ctx context.Context) error
}

// Open connects to the backend selected by cfg.Storage, verifies the
// connection and runs migrations. Connection failures wrap
// common.ErrStorageUnavailable.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch cfg.Storage {
	case config.StorageMongo:
		m, err = NewMongoRepositoryManager(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StoragePostgres:
		m, err = NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.StorageMemory:
		m = NewMemoryRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
	if err != nil {
		return nil, err
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, fmt.Errorf("%w: migrations: %v", common.ErrStorageUnavailable, err)
	}

	return m, nil
}
