// Package session is the client auth store: the signed-in user, their token,
// and the progress of the last network action. The session is persisted in
// storage.Storage so it survives restarts and is shared with other client
// processes using the same storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/cakelibrary/internal/client/api"
	"github.com/dmitrijs2005/cakelibrary/internal/client/models"
	"github.com/dmitrijs2005/cakelibrary/internal/client/storage"
	"github.com/dmitrijs2005/cakelibrary/internal/logging"
)

// State is a point-in-time copy of the session.
type State struct {
	User    *models.User
	Token   string
	Loading bool
	Error   string
}

type Session struct {
	mu    sync.Mutex
	state State

	api   api.Client
	store storage.Storage
	log   logging.Logger
}

// New restores the session from store. A stored user that cannot be decoded
// is dropped; the token is kept so FetchProfile can recover the user.
func New(ctx context.Context, c api.Client, store storage.Storage, l logging.Logger) (*Session, error) {
	s := &Session{api: c, store: store, log: l}

	token, _, err := store.Get(ctx, storage.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	s.state.Token = token

	raw, ok, err := store.Get(ctx, storage.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if ok && token != "" {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			l.Warn(ctx, "stored user is unreadable, dropping it", "error", err)
		} else {
			s.state.User = &u
		}
	}

	return s, nil
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token != ""
}

func (s *Session) ClearError() {
	s.mu.Lock()
	s.state.Error = ""
	s.mu.Unlock()
}

// Login authenticates and commits the returned user and token.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.begin()
	defer s.end()

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(err)
	}

	if err := s.commit(ctx, res.User, res.Token); err != nil {
		return s.fail(err)
	}
	s.log.Info(ctx, "logged in", "user_id", userID(res.User))
	return nil
}

// Register creates the account. The session is signed in only if the server
// returned a token with the registration.
func (s *Session) Register(ctx context.Context, username, email, password string) (*api.RegisterResult, error) {
	s.begin()
	defer s.end()

	res, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		return nil, s.fail(err)
	}

	if res.Token != "" {
		if err := s.commit(ctx, res.User, res.Token); err != nil {
			return nil, s.fail(err)
		}
	}
	return res, nil
}

// Logout forgets the session locally and tells the server, ignoring any
// server failure.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	s.state = State{}
	s.mu.Unlock()

	err := s.forget(ctx)

	if token != "" {
		if aerr := s.api.Logout(ctx, token); aerr != nil {
			s.log.Debug(ctx, "server logout failed", "error", aerr)
		}
	}
	return err
}

// FetchProfile refreshes the user from the server. Without a token it does
// nothing; an unauthorized answer ends the session.
func (s *Session) FetchProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	s.begin()
	defer s.end()

	u, err := s.api.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.mu.Lock()
			s.state.User = nil
			s.state.Token = ""
			s.mu.Unlock()
			if ferr := s.forget(ctx); ferr != nil {
				s.log.Warn(ctx, "clear stored session", "error", ferr)
			}
		}
		return s.fail(err)
	}

	if err := s.commit(ctx, u, token); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Session) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Session) end() {
	s.mu.Lock()
	s.state.Loading = false
	s.mu.Unlock()
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state.Error = err.Error()
	s.mu.Unlock()
	return err
}

// commit stores user and token in memory and in storage.
func (s *Session) commit(ctx context.Context, u *models.User, token string) error {
	s.mu.Lock()
	s.state.User = u
	s.state.Token = token
	s.mu.Unlock()

	if err := s.store.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if u == nil {
		return nil
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (s *Session) forget(ctx context.Context) error {
	return errors.Join(
		s.store.Remove(ctx, storage.KeyToken),
		s.store.Remove(ctx, storage.KeyUser),
	)
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
