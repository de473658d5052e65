// Package services contains server-side business logic. UserService
// handles registration, login and profile lookup on top of a credential
// store, a password hasher and a token issuer.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
	"github.com/dmitrijs2005/cakelibrary/internal/server/password"
	"github.com/dmitrijs2005/cakelibrary/internal/server/repositories/users"
)

// TokenIssuer signs and checks bearer tokens. *auth.Issuer implements it.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
	Verify(token string) (string, error)
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token string
	User  *models.User
}

type UserService struct {
	users  users.Repository
	hasher password.Hasher
	tokens TokenIssuer

	// dummyDigest is verified against when the email is unknown, so both
	// failure paths cost one hash verification.
	dummyOnce   sync.Once
	dummyDigest string
}

func NewUserService(repo users.Repository, hasher password.Hasher, tokens TokenIssuer) *UserService {
	return &UserService{users: repo, hasher: hasher, tokens: tokens}
}

// Register validates the input, checks email then username uniqueness,
// hashes the password and stores the user. No token is issued.
func (s *UserService) Register(ctx context.Context, username, email, plaintext string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := ValidateRegister(username, email, plaintext); err != nil {
		return nil, err
	}

	if err := s.ensureAbsent(ctx, s.users.GetByEmail, email, common.ErrDuplicateEmail); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.users.GetByUsername, username, common.ErrDuplicateUsername); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{Username: username, Email: email, PasswordHash: digest})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks credentials and issues a token for the user. An unknown email
// and a wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return nil, common.ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.burnVerification(plaintext)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	ok, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Logout is an acknowledgment only: tokens stay valid until they expire.
func (s *UserService) Logout(ctx context.Context) error {
	return ctx.Err()
}

// Authenticate resolves a bearer token to a user ID.
func (s *UserService) Authenticate(token string) (string, error) {
	return s.tokens.Verify(token)
}

// Profile returns the user behind an authenticated subject. A subject that
// no longer resolves to a user is treated as an invalid token.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}

func (s *UserService) ensureAbsent(
	ctx context.Context,
	get func(context.Context, string) (*models.User, error),
	key string,
	dup error,
) error {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return dup
	case errors.Is(err, common.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("error checking existing user: %w", err)
	}
}

func (s *UserService) burnVerification(plaintext string) {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash(string(common.GenerateRandByteArray(16)))
		if err == nil {
			s.dummyDigest = d
		}
	})
	if s.dummyDigest != "" {
		_, _ = s.hasher.Verify(plaintext, s.dummyDigest)
	}
}
