package refresh

import (
	"net/http"
	"time"

	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/metrics"
	"github.com/kochabx/authkit/redirect"
)

// Option configures a Refresher.
type Option func(*Refresher)

// WithHTTPClient replaces the bare HTTP client used for the exchange.
// The client must not route through the intercepting transport.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Refresher) {
		if client != nil {
			r.client = client
		}
	}
}

// WithCoordinator sets the redirect coordinator notified on failure.
func WithCoordinator(coordinator *redirect.Coordinator) Option {
	return func(r *Refresher) {
		r.coordinator = coordinator
	}
}

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) Option {
	return func(r *Refresher) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(r *Refresher) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// WithTimeout bounds a single exchange. Defaults to 10s.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Refresher) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}
