package redirect

import (
	"time"

	"github.com/kochabx/authkit/core/tag"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/metrics"
)

// Config holds the routes and timing windows of the coordinator.
type Config struct {
	SessionExpiredRoute string        `json:"session_expired_route" default:"/session-expired"`
	LoginRoute          string        `json:"login_route" default:"/sign-in"`
	SessionExpiredDelay time.Duration `json:"session_expired_delay" default:"500ms"`
	SessionExpiredReset time.Duration `json:"session_expired_reset" default:"2s"`
	LoginDelay          time.Duration `json:"login_delay" default:"100ms"`
	LoginReset          time.Duration `json:"login_reset" default:"1s"`
	ToastMessage        string        `json:"toast_message" default:"Your session has expired. Please sign in again."`
	ToastDuration       time.Duration `json:"toast_duration" default:"5s"`
}

// DefaultConfig returns the default routes and windows.
func DefaultConfig() Config {
	c := Config{}
	// Tags on own struct cannot fail to apply
	_ = tag.ApplyDefaults(&c)
	return c
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig replaces the routes and timing windows. Zero fields are
// filled with defaults.
func WithConfig(config Config) Option {
	return func(c *Coordinator) {
		_ = tag.ApplyDefaults(&config)
		c.config = config
	}
}

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocation sets the full-page location changer used while no
// navigation callback is registered.
func WithLocation(fn LocateFunc) Option {
	return func(c *Coordinator) {
		c.locate = fn
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(c *Coordinator) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}
