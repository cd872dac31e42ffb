package bunstore_test

import (
	"context"
	"testing"

	"github.com/openstage/go-session"
	"github.com/openstage/go-session/store/bunstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *bunstore.Store {
	t.Helper()

	store, err := bunstore.New(context.Background(), "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Remove(context.Background(), session.AccessTokenKey))
	require.NoError(t, store.Remove(context.Background(), session.RefreshTokenKey))

	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, session.AccessTokenKey, "AT1"))

	value, ok, err := store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AT1", value)
}

func TestStoreUpsertsOnConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, session.RefreshTokenKey, "RT1"))
	require.NoError(t, store.Set(ctx, session.RefreshTokenKey, "RT2"))

	value, ok, err := store.Get(ctx, session.RefreshTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "RT2", value)
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, session.AccessTokenKey, "AT1"))
	require.NoError(t, store.Remove(ctx, session.AccessTokenKey))

	_, ok, err := store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// removing a key that is already gone stays quiet
	require.NoError(t, store.Remove(ctx, session.AccessTokenKey))
}
