package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/store"
	"github.com/kochabx/authkit/store/memory"
)

func TestTokensEmptyWhenAbsent(t *testing.T) {
	s := NewStore(memory.New())

	pair, err := s.Tokens(context.Background())
	require.NoError(t, err)
	assert.True(t, pair.Empty())
	assert.False(t, pair.Valid())
}

func TestSaveTokensRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New())

	require.NoError(t, s.SaveTokens(ctx, "abc", "r1"))

	pair, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "abc", RefreshToken: "r1"}, pair)
	assert.True(t, pair.Valid())
}

func TestSaveTokensReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New())

	require.NoError(t, s.SaveTokens(ctx, "abc", "r1"))
	require.NoError(t, s.SaveTokens(ctx, "abc2", "r2"))

	// Never a mix of old and new
	pair, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "abc2", RefreshToken: "r2"}, pair)
}

func TestSaveTokensRejectsPartialPair(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New())

	assert.ErrorIs(t, s.SaveTokens(ctx, "abc", ""), ErrIncompletePair)
	assert.ErrorIs(t, s.SaveTokens(ctx, "", "r1"), ErrIncompletePair)

	// Failed saves leave nothing behind
	pair, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.True(t, pair.Empty())
}

func TestClearRemovesSessionKeysOnly(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	s := NewStore(storage)

	require.NoError(t, s.SaveTokens(ctx, "abc", "r1"))
	require.NoError(t, s.SaveUser(ctx, map[string]any{"id": 1}))
	require.NoError(t, s.SaveAccount(ctx, map[string]any{"balance": 120}))
	require.NoError(t, s.SaveThemeMode(ctx, "dark"))

	require.NoError(t, s.Clear(ctx))

	pair, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.True(t, pair.Empty())

	var user map[string]any
	assert.ErrorIs(t, s.User(ctx, &user), store.ErrNotFound)

	var account map[string]any
	assert.ErrorIs(t, s.Account(ctx, &account), store.ErrNotFound)

	// Theme preference survives logout
	mode, err := s.ThemeMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", mode)
}

func TestUserAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New())

	type profile struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}

	require.NoError(t, s.SaveUser(ctx, profile{ID: 7, Email: "a@b.c"}))

	var got profile
	require.NoError(t, s.User(ctx, &got))
	assert.Equal(t, profile{ID: 7, Email: "a@b.c"}, got)
}
