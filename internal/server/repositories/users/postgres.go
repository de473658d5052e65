package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/dbx"
	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash)
         VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dup := duplicateFromPg(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE username = $1
		 `, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE id::text = $1
		 `, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// duplicateFromPg maps a unique violation on the users table to the matching
// sentinel, or returns nil for any other error.
func duplicateFromPg(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case usernameConstraint:
		return common.ErrDuplicateUsername
	default:
		return common.ErrDuplicateEmail
	}
}
