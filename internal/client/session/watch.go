package session

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/cakelibrary/internal/client/models"
	"github.com/dmitrijs2005/cakelibrary/internal/client/storage"
)

// Watch applies changes other processes make to the stored session until ctx
// is done. A removed token signs this session out and clears the stored
// user; a new token signs it in as the stored user. notify, if set, is
// called after each applied change.
func (s *Session) Watch(ctx context.Context, notify func(State)) error {
	ch, err := s.store.Watch(ctx)
	if err != nil {
		return err
	}

	for c := range ch {
		st, changed := s.apply(ctx, c)
		if !changed {
			continue
		}
		if c.Key == storage.KeyToken && !c.Present {
			// finish the logout: the user must not outlive its token
			if err := s.store.Remove(ctx, storage.KeyUser); err != nil {
				s.log.Warn(ctx, "clear stored user", "error", err)
			}
		}
		if notify != nil {
			notify(st)
		}
	}
	return ctx.Err()
}

func (s *Session) apply(ctx context.Context, c storage.Change) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c.Key {
	case storage.KeyToken:
		if !c.Present {
			if s.state.Token == "" {
				return State{}, false
			}
			s.log.Info(ctx, "session ended elsewhere")
			s.state = State{}
			return s.snapshot(), true
		}
		if c.Value == s.state.Token {
			return State{}, false
		}
		s.state.Token = c.Value
		s.state.User = nil
		if raw, ok, err := s.store.Get(ctx, storage.KeyUser); err == nil && ok {
			s.state.User = decodeUser(raw)
		}
		return s.snapshot(), true

	case storage.KeyUser:
		if !c.Present || s.state.Token == "" {
			return State{}, false
		}
		u := decodeUser(c.Value)
		if u == nil || sameUser(s.state.User, u) {
			return State{}, false
		}
		s.state.User = u
		return s.snapshot(), true
	}
	return State{}, false
}

func decodeUser(raw string) *models.User {
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

func sameUser(a, b *models.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Username == b.Username && a.Email == b.Email && a.CreatedAt.Equal(b.CreatedAt)
}
