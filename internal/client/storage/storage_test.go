package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) Storage {
	return map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage {
			s := NewMemoryStorage()
			t.Cleanup(func() { s.Close() })
			return s
		},
		"sqlite": func(t *testing.T) Storage {
			s, err := OpenSQLite(context.Background(), MemoryPath, 10*time.Millisecond)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func nextChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change observed")
		return Change{}
	}
}

func TestStorage_GetSetRemove(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			_, ok, err := s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, KeyToken, "abc"))
			v, ok, err := s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, s.Set(ctx, KeyToken, "def"))
			v, _, _ = s.Get(ctx, KeyToken)
			assert.Equal(t, "def", v)

			require.NoError(t, s.Set(ctx, KeyUser, `{"id":"1"}`))
			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{KeyToken: "def", KeyUser: `{"id":"1"}`}, all)

			require.NoError(t, s.Remove(ctx, KeyToken))
			require.NoError(t, s.Remove(ctx, KeyToken))
			_, ok, err = s.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStorage_Watch(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			require.NoError(t, s.Set(ctx, KeyUser, "u"))

			ch, err := s.Watch(ctx)
			require.NoError(t, err)

			require.NoError(t, s.Set(ctx, KeyToken, "t1"))
			assert.Equal(t, Change{Key: KeyToken, Value: "t1", Present: true}, nextChange(t, ch))

			require.NoError(t, s.Remove(ctx, KeyToken))
			assert.Equal(t, Change{Key: KeyToken}, nextChange(t, ch))

			cancel()
			require.Eventually(t, func() bool {
				select {
				case _, ok := <-ch:
					return !ok
				default:
					return false
				}
			}, 2*time.Second, 5*time.Millisecond)
		})
	}
}

func TestSQLite_SharedFileSeenByOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := OpenSQLite(ctx, path, 10*time.Millisecond)
	require.NoError(t, err)
	defer a.Close()

	b, err := OpenSQLite(ctx, path, 10*time.Millisecond)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set(ctx, KeyToken, "shared"))

	v, ok, err := b.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "shared", v)

	ch, err := b.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Remove(ctx, KeyToken))
	assert.Equal(t, Change{Key: KeyToken}, nextChange(t, ch))
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path, time.Second)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyToken, "persisted"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, time.Second)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestSQLite_OpenCreatesDirectory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "x.db"), time.Second)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSQLite_OpenFailsOnBadPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0o600))

	_, err := OpenSQLite(context.Background(), filepath.Join(dir, "file", "x.db"), time.Second)
	require.Error(t, err)
}

func TestMemory_CloseClosesWatchers(t *testing.T) {
	s := NewMemoryStorage()
	ch, err := s.Watch(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, ok := <-ch
	assert.False(t, ok)

	ch, err = s.Watch(context.Background())
	require.NoError(t, err)
	_, ok = <-ch
	assert.False(t, ok)
}

func TestMemory_SlowWatcherKeepsLatestPerKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStorage()
	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	// far more writes than any buffer, with nobody reading
	for i := 0; i < 500; i++ {
		require.NoError(t, s.Set(ctx, KeyToken, fmt.Sprintf("t%d", i)))
		require.NoError(t, s.Set(ctx, fmt.Sprintf("k%d", i%100), fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, s.Remove(ctx, KeyToken))

	latest := make(map[string]Change)
	for len(latest) < 101 || latest[KeyToken].Present {
		c := nextChange(t, ch)
		latest[c.Key] = c
	}

	assert.Equal(t, Change{Key: KeyToken}, latest[KeyToken])
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("k%d", i)
		assert.Equal(t, fmt.Sprintf("v%d", 400+i), latest[key].Value, key)
	}
}

func TestMemory_WatchStopsWithContext(t *testing.T) {
	s := NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), KeyToken, "t1"))
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	// writes after the watcher is gone must not block
	require.NoError(t, s.Set(context.Background(), KeyToken, "t2"))
}

func TestDiff(t *testing.T) {
	got := diff(
		map[string]string{"a": "1", "b": "2", "c": "3"},
		map[string]string{"a": "1", "b": "20", "d": "4"},
	)
	assert.Equal(t, []Change{
		{Key: "b", Value: "20", Present: true},
		{Key: "c"},
		{Key: "d", Value: "4", Present: true},
	}, got)

	assert.Empty(t, diff(map[string]string{"a": "1"}, map[string]string{"a": "1"}))
}
