package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletkit/walletkit/core"
)

func TestMemoryStoreSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.LoadSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	session := core.Session{
		AccessToken: "t1",
		User:        core.User{ID: "u1", Username: "alice"},
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, s.SaveSession(ctx, session))

	got, ok, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.AccessToken, got.AccessToken)
	assert.Equal(t, "alice", got.User.Username)

	require.NoError(t, s.ClearSession(ctx))
	_, ok, err = s.LoadSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an empty store stays a no-op.
	require.NoError(t, s.ClearSession(ctx))
}

func TestMemoryStoreStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	state := core.CorrelationState{State: "s1", ClientID: "client_1"}
	require.NoError(t, s.SaveState(ctx, state))

	got, ok, err := s.LoadState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, got)

	require.NoError(t, s.ClearState(ctx))
	_, ok, err = s.LoadState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
