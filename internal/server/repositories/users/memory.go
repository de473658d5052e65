package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]models.User
	byEmail    map[string]string
	byUsername map[string]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]models.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return nil, common.ErrDuplicateUsername
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now().UTC()

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	r.byUsername[user.Username] = user.ID

	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.lookup(ctx, r.byEmail, email)
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.lookup(ctx, r.byUsername, username)
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

// Len reports the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryRepository) lookup(ctx context.Context, index map[string]string, key string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}
