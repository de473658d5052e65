package repomanager

import (
	"context"

	"github.com/dmitrijs2005/cakelibrary/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost
// on exit.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
