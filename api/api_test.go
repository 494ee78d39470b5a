package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authkit/client"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/refresh"
	"github.com/kochabx/authkit/session"
	"github.com/kochabx/authkit/store/memory"
)

type fixture struct {
	service *Service
	store   *session.Store
	backend *memory.Storage

	refreshHits atomic.Int32
}

// newFixture wires the full pipeline against a fake backend that
// accepts the token "t1" (or "t2" after a refresh).
func newFixture(t *testing.T) (*fixture, *httptest.Server) {
	t.Helper()

	f := &fixture{backend: memory.New()}
	f.store = session.NewStore(f.backend)

	var accepted atomic.Value
	accepted.Store("t1")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"token": "t1", "refreshToken": "r1"},
		})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshHits.Add(1)
		accepted.Store("t2")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"token": "t2", "refreshToken": "r2"},
		})
	})
	mux.HandleFunc("POST /auth/password-reset", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+accepted.Load().(string) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("GET /profile", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": User{
				ID: "u1", Name: "Ada", Email: "ada@example.com",
				Accounts: []Account{{ID: "a1", Balance: 1200, Currency: "USD"}},
			},
		})
	}))
	mux.HandleFunc("GET /account/balance", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": Account{ID: "a1", Balance: 1200, Currency: "USD"},
		})
	}))
	mux.HandleFunc("GET /operation", authed(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []Operation{{ID: "op1", Type: "deposit", Amount: 500}},
		})
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	refresher := refresh.New(f.store, server.URL+"/auth/refresh")
	transport := client.NewTransport(f.store, refresher, client.WithRefreshLeeway(-1))
	pipeline := client.New(
		client.WithBaseURL(server.URL),
		client.WithTransport(transport),
	)

	f.service = New(pipeline, f.store)
	return f, server
}

func TestLoginPersistsSession(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	user, err := f.service.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	tokens, err := f.store.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Pair{AccessToken: "t1", RefreshToken: "r1"}, tokens)

	var cached User
	require.NoError(t, f.store.User(ctx, &cached))
	assert.Equal(t, "u1", cached.ID)

	var account Account
	require.NoError(t, f.store.Account(ctx, &account))
	assert.Equal(t, "a1", account.ID)
}

func TestLoginRejectedMapsError(t *testing.T) {
	f, _ := newFixture(t)

	_, err := f.service.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, errors.FromError(err).GetCode())
	assert.Contains(t, err.Error(), "invalid credentials")

	tokens, tokErr := f.store.Tokens(context.Background())
	require.NoError(t, tokErr)
	assert.True(t, tokens.Empty(), "failed login stores nothing")
}

func TestBalanceRidesThePipeline(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	account, err := f.service.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), account.Balance)
}

func TestBalanceWithoutSessionFailsFast(t *testing.T) {
	f, _ := newFixture(t)

	_, err := f.service.Balance(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingCredential)
}

func TestStaleTokenIsRefreshedTransparently(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	// A stale pair: the backend only accepts t1, so the first call 401s
	require.NoError(t, f.store.SaveTokens(ctx, "stale", "r1"))

	account, err := f.service.Balance(ctx)
	require.NoError(t, err, "caller never sees the 401")
	assert.Equal(t, "a1", account.ID)
	assert.Equal(t, int32(1), f.refreshHits.Load())

	tokens, err := f.store.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Pair{AccessToken: "t2", RefreshToken: "r2"}, tokens)
}

func TestOperations(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	ops, err := f.service.Operations(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "deposit", ops[0].Type)
}

func TestRequestPasswordReset(t *testing.T) {
	f, _ := newFixture(t)
	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "ada@example.com"))
}

func TestLogoutClearsEverything(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx))

	tokens, err := f.store.Tokens(ctx)
	require.NoError(t, err)
	assert.True(t, tokens.Empty())

	var cached User
	assert.Error(t, f.store.User(ctx, &cached), "profile cache removed")
}
