package userauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationBlockAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	blocked, err := store.IsBlocked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, store.Block(ctx, "token-a", time.Now().Add(time.Hour)))

	blocked, err = store.IsBlocked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestMemoryRevocationRecordsExpireWithToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	now := time.Now()
	store.Now = func() time.Time { return now }

	require.NoError(t, store.Block(ctx, "token-a", now.Add(time.Hour)))
	assert.Equal(t, 1, store.Len())

	// Advance past the token expiry; the record must go with it.
	now = now.Add(2 * time.Hour)

	blocked, err := store.IsBlocked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryRevocationPastExpiryIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	require.NoError(t, store.Block(ctx, "token-a", time.Now().Add(-time.Minute)))
	assert.Equal(t, 0, store.Len())

	created, err := store.BlockOnce(ctx, "token-b", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryRevocationDoubleBlockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	expiresAt := time.Now().Add(time.Hour)

	require.NoError(t, store.Block(ctx, "token-a", expiresAt))
	require.NoError(t, store.Block(ctx, "token-a", expiresAt))

	blocked, err := store.IsBlocked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryRevocationBlockOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	expiresAt := time.Now().Add(time.Hour)

	created, err := store.BlockOnce(ctx, "token-a", expiresAt)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.BlockOnce(ctx, "token-a", expiresAt)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestMemoryRevocationBlockOnceAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	now := time.Now()
	store.Now = func() time.Time { return now }

	created, err := store.BlockOnce(ctx, "token-a", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, created)

	now = now.Add(time.Hour)

	// The old record expired, so a fresh block for a new expiry wins again.
	created, err = store.BlockOnce(ctx, "token-a", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, created)
}
