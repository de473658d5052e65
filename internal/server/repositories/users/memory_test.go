package users

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAndGet(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	byEmail, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, byEmail)

	byName, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	// callers get copies
	byID.Email = "changed@x.com"
	again, _ := r.GetByID(ctx, u.ID)
	assert.Equal(t, "a@x.com", again.Email)
}

func TestMemory_Duplicates(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{Username: "bob", Email: "a@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	_, err = r.Create(ctx, &models.User{Username: "alice", Email: "b@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrDuplicateUsername)

	// email is checked first
	_, err = r.Create(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	assert.Equal(t, 1, r.Len())
}

func TestMemory_NotFound(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	_, err := r.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.GetByID(ctx, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_ConcurrentSameEmail(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(ctx, &models.User{
				Username: fmt.Sprintf("user%d", i), Email: "same@x.com", PasswordHash: "h",
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, r.Len())
}

func TestMemory_CancelledContext(t *testing.T) {
	r := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Create(ctx, &models.User{Username: "a", Email: "a@x.com"})
	require.ErrorIs(t, err, context.Canceled)
	_, err = r.GetByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, context.Canceled)
}
