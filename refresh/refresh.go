// Package refresh exchanges the stored refresh token for a new token
// pair. Concurrent callers coalesce on a single in-flight exchange and
// share its outcome, so a burst of 401s produces exactly one network
// call against the refresh endpoint.
package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/metrics"
	"github.com/kochabx/authkit/redirect"
	"github.com/kochabx/authkit/session"
)

// State describes where the refresher currently is in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRefreshing
	StateRefreshed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateRefreshed:
		return "refreshed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrMissingRefreshToken is the refresh failure raised when no refresh
// token is stored. No network call is made. It matches
// errors.ErrRefreshFailed under errors.Is.
var ErrMissingRefreshToken = errors.ErrRefreshFailed.WithMetadata(map[string]string{
	"reason": "missing_refresh_token",
})

// singleflight key; there is only ever one refresh identity per store.
const refreshKey = "refresh"

// Refresher performs the token exchange. The HTTP client it uses is a
// bare one, never the intercepted pipeline client: the refresh endpoint
// is allow-listed anyway, and going through the interceptor would risk
// recursive refresh attempts.
type Refresher struct {
	session     *session.Store
	endpoint    string
	client      *http.Client
	coordinator *redirect.Coordinator
	logger      *log.Logger
	recorder    metrics.Recorder
	timeout     time.Duration

	group singleflight.Group
	state atomic.Int32
}

// New creates a Refresher posting to the given endpoint URL.
func New(sessionStore *session.Store, endpoint string, opts ...Option) *Refresher {
	r := &Refresher{
		session:  sessionStore,
		endpoint: endpoint,
		client:   &http.Client{},
		logger:   log.G,
		recorder: metrics.NopRecorder{},
		timeout:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State returns the last observed lifecycle state.
func (r *Refresher) State() State {
	return State(r.state.Load())
}

// Refresh exchanges the stored refresh token for a new pair and
// persists it. Callers arriving while an exchange is in flight wait for
// that exchange and share its result instead of issuing their own.
//
// Failure always tears the session down: the store is cleared and the
// session-expired redirect is dispatched before the error is returned.
func (r *Refresher) Refresh(ctx context.Context) (session.Pair, error) {
	v, err, shared := r.group.Do(refreshKey, func() (any, error) {
		// The exchange is shared by every coalesced caller, so it must
		// not die with the first caller's context.
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.exchange(exchangeCtx)
	})
	if shared {
		r.logger.Debug().Msg("refresh coalesced onto in-flight exchange")
	}
	if err != nil {
		return session.Pair{}, err
	}

	return v.(session.Pair), nil
}

func (r *Refresher) exchange(ctx context.Context) (session.Pair, error) {
	r.state.Store(int32(StateRefreshing))

	tokens, err := r.session.Tokens(ctx)
	if err != nil {
		return session.Pair{}, r.fail(ctx, metrics.ResultFailed,
			errors.ErrRefreshFailed.WithCause(err))
	}

	if tokens.RefreshToken == "" {
		return session.Pair{}, r.fail(ctx, metrics.ResultMissingToken, ErrMissingRefreshToken)
	}

	pair, err := r.post(ctx, tokens.RefreshToken)
	if err != nil {
		return session.Pair{}, r.fail(ctx, metrics.ResultFailed,
			errors.ErrRefreshFailed.WithCause(err))
	}

	if err := r.session.SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return session.Pair{}, r.fail(ctx, metrics.ResultFailed,
			errors.ErrRefreshFailed.WithCause(err))
	}

	r.state.Store(int32(StateRefreshed))
	r.recorder.RefreshCompleted(metrics.ResultRefreshed)
	r.logger.Info().Msg("token pair refreshed")

	return pair, nil
}

// post performs the actual exchange against the refresh endpoint.
func (r *Refresher) post(ctx context.Context, refreshToken string) (session.Pair, error) {
	payload := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken}

	body, err := json.Marshal(payload)
	if err != nil {
		return session.Pair{}, fmt.Errorf("refresh: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return session.Pair{}, fmt.Errorf("refresh: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return session.Pair{}, fmt.Errorf("refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.Pair{}, fmt.Errorf("refresh: endpoint returned %d", resp.StatusCode)
	}

	var envelope struct {
		Data session.Pair `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return session.Pair{}, fmt.Errorf("refresh: decode response: %w", err)
	}

	// Both fields or nothing; a half-issued pair is a failure.
	if !envelope.Data.Valid() {
		return session.Pair{}, fmt.Errorf("refresh: response missing token fields")
	}

	return envelope.Data, nil
}

// fail tears the session down and reports the outcome. The original
// error is returned so the caller's own handling still runs.
func (r *Refresher) fail(ctx context.Context, result string, cause error) error {
	r.state.Store(int32(StateFailed))
	r.recorder.RefreshCompleted(result)
	r.logger.Warn().Err(cause).Str("result", result).Msg("token refresh failed")

	if err := r.session.Clear(ctx); err != nil {
		r.logger.Error().Err(err).Msg("session clear after failed refresh")
	}

	if r.coordinator != nil {
		r.coordinator.RedirectToSessionExpired()
	}

	return cause
}
