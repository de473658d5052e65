package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/client/api"
	"github.com/dmitrijs2005/cakelibrary/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, s *Session) <-chan State {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	notes := make(chan State, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Watch(ctx, func(st State) { notes <- st })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return notes
}

func TestWatch_LogoutElsewhereEndsSession(t *testing.T) {
	ctx := context.Background()
	shared := storage.NewMemoryStorage()

	f := &fakeAPI{loginRes: &api.LoginResult{Token: "tok", User: alice}}
	first := newSession(t, f, shared)
	require.NoError(t, first.Login(ctx, "a@x.com", "password1"))

	second := newSession(t, &fakeAPI{}, shared)
	require.True(t, second.IsAuthenticated())
	notes := startWatch(t, second)
	// let the watcher subscribe
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, first.Logout(ctx))

	select {
	case st := <-notes:
		assert.Empty(t, st.Token)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
	assert.False(t, second.IsAuthenticated())
	assert.Nil(t, second.Snapshot().User)
}

func TestWatch_TokenRemovedElsewhereClearsStoredUser(t *testing.T) {
	ctx := context.Background()
	shared := storage.NewMemoryStorage()

	s := newSession(t, &fakeAPI{loginRes: &api.LoginResult{Token: "tok", User: alice}}, shared)
	require.NoError(t, s.Login(ctx, "a@x.com", "password1"))
	notes := startWatch(t, s)
	time.Sleep(20 * time.Millisecond)

	// only the token goes away, as when another process clears it directly
	require.NoError(t, shared.Remove(ctx, storage.KeyToken))

	select {
	case st := <-notes:
		assert.Empty(t, st.Token)
		assert.Nil(t, st.User)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
	assert.False(t, s.IsAuthenticated())

	require.Eventually(t, func() bool {
		_, ok, err := shared.Get(ctx, storage.KeyUser)
		return err == nil && !ok
	}, 2*time.Second, 10*time.Millisecond)

	// a later login elsewhere must not resurrect the old user
	require.NoError(t, shared.Set(ctx, storage.KeyToken, "tok2"))
	require.Eventually(t, func() bool { return s.Snapshot().Token == "tok2" }, 2*time.Second, 10*time.Millisecond)
	assert.Nil(t, s.Snapshot().User)
}

func TestWatch_LoginElsewhereStartsSession(t *testing.T) {
	ctx := context.Background()
	shared := storage.NewMemoryStorage()

	watcher := newSession(t, &fakeAPI{}, shared)
	startWatch(t, watcher)
	time.Sleep(20 * time.Millisecond)

	other := newSession(t, &fakeAPI{loginRes: &api.LoginResult{Token: "tok", User: alice}}, shared)
	require.NoError(t, other.Login(ctx, "a@x.com", "password1"))

	require.Eventually(t, func() bool {
		st := watcher.Snapshot()
		return st.Token == "tok" && st.User != nil && st.User.Username == "alice"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_OwnChangesAreQuiet(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, &fakeAPI{loginRes: &api.LoginResult{Token: "tok", User: alice}}, storage.NewMemoryStorage())
	notes := startWatch(t, s)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, s.Login(ctx, "a@x.com", "password1"))
	require.NoError(t, s.Logout(ctx))

	select {
	case st := <-notes:
		t.Fatalf("unexpected notification: %+v", st)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatch_SQLiteAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	a, err := storage.OpenSQLite(ctx, path, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, err := storage.OpenSQLite(ctx, path, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	first := newSession(t, &fakeAPI{loginRes: &api.LoginResult{Token: "tok", User: alice}}, a)
	require.NoError(t, first.Login(ctx, "a@x.com", "password1"))

	second := newSession(t, &fakeAPI{}, b)
	require.True(t, second.IsAuthenticated())
	startWatch(t, second)
	time.Sleep(60 * time.Millisecond)

	require.NoError(t, first.Logout(ctx))

	require.Eventually(t, func() bool { return !second.IsAuthenticated() }, 2*time.Second, 20*time.Millisecond)
}
