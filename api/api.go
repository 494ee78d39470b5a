// Package api is the typed client for the dashboard backend. It rides
// on the intercepting pipeline client, so every call here gets bearer
// attach, refresh and retry for free, and it keeps the session store's
// cached user and account in step with what the server returns.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kochabx/authkit/client"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/session"
)

// Routes of the backend. The auth ones must stay aligned with the
// policy allow-list or login itself would demand a token.
const (
	routeLogin         = "/auth/login"
	routeRegister      = "/auth/register"
	routePasswordReset = "/auth/password-reset"
	routeProfile       = "/profile"
	routeBalance       = "/account/balance"
	routeOperations    = "/operation"
)

// Service exposes the backend operations.
type Service struct {
	client  client.Clienter
	session *session.Store
	logger  *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service on the given pipeline client.
func New(httpClient client.Clienter, sessionStore *session.Store, opts ...Option) *Service {
	s := &Service{
		client:  httpClient,
		session: sessionStore,
		logger:  log.G,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Login exchanges credentials for a token pair, persists it, then
// fetches and caches the profile and primary account.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := s.client.Request(http.MethodPost, routeLogin,
		Credentials{Email: email, Password: password}, client.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data session.Pair `json:"data"`
	}
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}
	if !payload.Data.Valid() {
		return nil, errors.ErrAuthenticationFailed.WithMetadata(map[string]string{
			"reason": "incomplete token pair in login response",
		})
	}

	if err := s.session.SaveTokens(ctx, payload.Data.AccessToken, payload.Data.RefreshToken); err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Msg("logged in")

	return s.Profile(ctx)
}

// Register creates an account. The caller logs in separately.
func (s *Service) Register(ctx context.Context, registration Registration) error {
	resp, err := s.client.Request(http.MethodPost, routeRegister, registration, client.WithContext(ctx))
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

// RequestPasswordReset asks the backend to start a reset flow.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := s.client.Request(http.MethodPost, routePasswordReset,
		map[string]string{"email": email}, client.WithContext(ctx))
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

// Logout drops the session locally. The server holds no session state
// for bearer tokens, so there is nothing to call.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("logged out")
	return nil
}

// Profile fetches the user and refreshes the cached user and primary
// account.
func (s *Service) Profile(ctx context.Context) (*User, error) {
	resp, err := s.client.Request(http.MethodGet, routeProfile, nil, client.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data User `json:"data"`
	}
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}

	if err := s.session.SaveUser(ctx, payload.Data); err != nil {
		return nil, err
	}
	if len(payload.Data.Accounts) > 0 {
		if err := s.session.SaveAccount(ctx, payload.Data.Accounts[0]); err != nil {
			return nil, err
		}
	}

	return &payload.Data, nil
}

// Balance fetches the primary account balance.
func (s *Service) Balance(ctx context.Context) (*Account, error) {
	resp, err := s.client.Request(http.MethodGet, routeBalance, nil, client.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data Account `json:"data"`
	}
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

// Operations lists ledger entries, newest first.
func (s *Service) Operations(ctx context.Context, page, limit int) ([]Operation, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	route := routeOperations
	if len(query) > 0 {
		route += "?" + query.Encode()
	}

	resp, err := s.client.Request(http.MethodGet, route, nil, client.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []Operation `json:"data"`
	}
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// decode checks the status and unmarshals the envelope. Error bodies
// are mapped onto *errors.Error with the response status; the body's
// message field is used when present.
func decode(resp *http.Response, dest any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		body, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(body, &failure); err != nil || failure.Message == "" {
			return errors.New(resp.StatusCode, "request failed with status %d", resp.StatusCode)
		}
		return errors.New(resp.StatusCode, "%s", failure.Message)
	}

	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
