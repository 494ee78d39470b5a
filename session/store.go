package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kochabx/authkit/store"
)

// Store reads and writes session state through a store.Storage.
type Store struct {
	storage store.Storage
}

// NewStore creates a Store over the given storage backend.
func NewStore(storage store.Storage) *Store {
	return &Store{storage: storage}
}

// Tokens returns the persisted pair. Missing keys yield empty fields,
// not an error; only backend failures are reported.
func (s *Store) Tokens(ctx context.Context) (Pair, error) {
	access, err := s.get(ctx, KeyAccessToken)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := s.get(ctx, KeyRefreshToken)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// SaveTokens replaces the whole pair. The refresh token is written
// first: if the second write is lost, the next startup finds a refresh
// token it can exchange instead of an access token with no way to renew
// it. Backends with true multi-key atomicity (file) make this ordering
// moot.
func (s *Store) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return ErrIncompletePair
	}

	if err := s.storage.Set(ctx, KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("session: save refresh token: %w", err)
	}
	if err := s.storage.Set(ctx, KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("session: save access token: %w", err)
	}
	return nil
}

// Clear removes every session key in one operation: tokens and the
// cached profile blobs. The theme preference survives logout.
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Remove(ctx, KeyAccessToken, KeyRefreshToken, KeyUser, KeyAccount)
}

// SaveUser caches the profile object as JSON.
func (s *Store) SaveUser(ctx context.Context, user any) error {
	return s.setJSON(ctx, KeyUser, user)
}

// User decodes the cached profile into dest. Returns store.ErrNotFound
// when nothing is cached.
func (s *Store) User(ctx context.Context, dest any) error {
	return s.getJSON(ctx, KeyUser, dest)
}

// SaveAccount caches the primary account object as JSON.
func (s *Store) SaveAccount(ctx context.Context, account any) error {
	return s.setJSON(ctx, KeyAccount, account)
}

// Account decodes the cached primary account into dest. Returns
// store.ErrNotFound when nothing is cached.
func (s *Store) Account(ctx context.Context, dest any) error {
	return s.getJSON(ctx, KeyAccount, dest)
}

// ThemeMode returns the persisted theme ("light" or "dark"), empty when
// unset.
func (s *Store) ThemeMode(ctx context.Context) (string, error) {
	return s.get(ctx, KeyThemeMode)
}

// SaveThemeMode persists the theme preference.
func (s *Store) SaveThemeMode(ctx context.Context, mode string) error {
	return s.storage.Set(ctx, KeyThemeMode, mode)
}

// get treats a missing key as empty.
func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, err := s.storage.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	return s.storage.Set(ctx, key, string(raw))
}

func (s *Store) getJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.storage.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("session: decode %s: %w", key, err)
	}
	return nil
}
