package client

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/kochabx/authkit/core/util/id"
	"github.com/kochabx/authkit/errors"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/metrics"
	"github.com/kochabx/authkit/policy"
	"github.com/kochabx/authkit/redirect"
	"github.com/kochabx/authkit/refresh"
	"github.com/kochabx/authkit/session"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	bearerPrefix        = "Bearer "
)

// Transport is the intercepting http.RoundTripper. For requests the
// policy marks as authenticated it attaches the stored bearer token,
// rejects token-less requests before they reach the network, and on a
// 401 runs the refresh exchange and replays the request exactly once.
//
// Everything that is not a 401 passes through untouched: the transport
// never interprets business error bodies.
type Transport struct {
	base        http.RoundTripper
	policy      *policy.Policy
	session     *session.Store
	refresher   *refresh.Refresher
	coordinator *redirect.Coordinator
	logger      *log.Logger
	recorder    metrics.Recorder

	// refreshLeeway widens the proactive expiry check; negative
	// disables proactive refresh entirely.
	refreshLeeway time.Duration
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBase sets the underlying round tripper. Defaults to
// http.DefaultTransport.
func WithBase(base http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if base != nil {
			t.base = base
		}
	}
}

// WithPolicy replaces the auth policy. Defaults to policy.Default.
func WithPolicy(p *policy.Policy) TransportOption {
	return func(t *Transport) {
		if p != nil {
			t.policy = p
		}
	}
}

// WithCoordinator sets the redirect coordinator notified when a request
// is permanently unauthenticated.
func WithCoordinator(coordinator *redirect.Coordinator) TransportOption {
	return func(t *Transport) {
		t.coordinator = coordinator
	}
}

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) TransportOption {
	return func(t *Transport) {
		if recorder != nil {
			t.recorder = recorder
		}
	}
}

// WithRefreshLeeway sets how long before its exp claim a JWT access
// token is refreshed proactively. Negative disables the check.
func WithRefreshLeeway(leeway time.Duration) TransportOption {
	return func(t *Transport) {
		t.refreshLeeway = leeway
	}
}

// NewTransport creates a Transport over the given session store and
// refresher.
func NewTransport(sessionStore *session.Store, refresher *refresh.Refresher, opts ...TransportOption) *Transport {
	t := &Transport{
		base:          http.DefaultTransport,
		policy:        policy.Default,
		session:       sessionStore,
		refresher:     refresher,
		logger:        log.G,
		recorder:      metrics.NopRecorder{},
		refreshLeeway: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, id.Generate())
	}

	if !t.policy.RequiresAuthentication(req.URL.String()) {
		return t.base.RoundTrip(out)
	}

	// A caller-set Authorization header is never overridden; the stored
	// token is not even consulted for the first attempt.
	preset := out.Header.Get(headerAuthorization) != ""
	if !preset {
		tokens, err := t.session.Tokens(ctx)
		if err != nil {
			return nil, err
		}

		accessToken := tokens.AccessToken
		if accessToken == "" {
			t.recorder.RequestRejected()
			t.logger.Debug().Str("path", req.URL.Path).Msg("request rejected, no stored token")
			return nil, errors.ErrMissingCredential
		}

		if t.refreshLeeway >= 0 && session.Expired(accessToken, t.refreshLeeway) {
			pair, err := t.refresher.Refresh(ctx)
			if err != nil {
				return nil, errors.ErrAuthenticationFailed.WithCause(err)
			}
			accessToken = pair.AccessToken
		}

		out.Header.Set(headerAuthorization, bearerPrefix+accessToken)
	}

	// Buffer the body up front so a retry can resend it.
	body, err := bufferBody(out)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	drain(resp)
	t.logger.Debug().
		Str("path", req.URL.Path).
		Str("request_id", out.Header.Get(headerRequestID)).
		Msg("request unauthorized, refreshing")

	pair, err := t.refresher.Refresh(ctx)
	if err != nil {
		// The refresher has already cleared the session and dispatched
		// the redirect; the caller still gets the failure.
		return nil, errors.ErrAuthenticationFailed.WithCause(err)
	}

	retry := req.Clone(ctx)
	retry.Header.Set(headerRequestID, out.Header.Get(headerRequestID))
	retry.Header.Set(headerAuthorization, bearerPrefix+pair.AccessToken)
	if body != nil {
		retry.Body = io.NopCloser(bytes.NewReader(body))
		retry.ContentLength = int64(len(body))
	}

	t.recorder.RetryPerformed()

	resp, err = t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Fresh token, still rejected: the request is permanently
	// unauthenticated and must not loop.
	drain(resp)

	if err := t.session.Clear(ctx); err != nil {
		t.logger.Error().Err(err).Msg("session clear after rejected retry")
	}
	if t.coordinator != nil {
		t.coordinator.RedirectToSessionExpired()
	}

	return nil, errors.ErrAuthenticationFailed
}

// bufferBody reads the request body into memory and rearms it, so the
// request can be sent more than once.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	return body, nil
}

// drain discards a response that will not be returned to the caller, so
// the underlying connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
