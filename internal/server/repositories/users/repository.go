// Package users persists registered accounts. Every backend enforces
// username and email uniqueness at insert time and reports violations as
// common.ErrDuplicateEmail or common.ErrDuplicateUsername; lookups that
// match nothing return common.ErrNotFound.
package users

import (
	"context"

	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
