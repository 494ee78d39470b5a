// Package redirect gates session-expiry navigation. Several requests
// can fail authentication at the same moment; the Coordinator makes
// sure the user sees one toast and one navigation, not a storm.
package redirect

import (
	"sync"
	"time"

	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/metrics"
)

// NavigateFunc performs an in-app navigation. replace indicates the
// history entry should be replaced rather than pushed.
type NavigateFunc func(path string, replace bool)

// ToastFunc shows a user-facing notification.
type ToastFunc func(message, severity string, duration time.Duration)

// LocateFunc performs a full location change. It is the fallback used
// before a NavigateFunc has been registered.
type LocateFunc func(path string)

const (
	TargetSessionExpired = "session_expired"
	TargetLogin          = "login"
)

// Coordinator debounces redirect-triggering events. It is deliberately
// a long-lived injected handle, not package state: the transport and
// refresh layers receive it at construction and share one instance for
// the lifetime of the client.
type Coordinator struct {
	mu          sync.Mutex
	redirecting bool
	navigate    NavigateFunc
	toast       ToastFunc
	locate      LocateFunc

	config   Config
	logger   *log.Logger
	recorder metrics.Recorder
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		config:   DefaultConfig(),
		logger:   log.G,
		recorder: metrics.NopRecorder{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegisterNavigation installs the in-app navigation callback. Called at
// application start.
func (c *Coordinator) RegisterNavigation(fn NavigateFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigate = fn
}

// ResetNavigation removes the navigation callback. Called at teardown;
// subsequent redirects fall back to the location changer.
func (c *Coordinator) ResetNavigation() {
	c.RegisterNavigation(nil)
}

// RegisterToast installs the notification callback.
func (c *Coordinator) RegisterToast(fn ToastFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toast = fn
}

// ResetToast removes the notification callback; the toast is dropped.
func (c *Coordinator) ResetToast() {
	c.RegisterToast(nil)
}

// IsRedirecting reports whether a redirect is currently in flight.
func (c *Coordinator) IsRedirecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirecting
}

// RedirectToSessionExpired shows the expiry toast and navigates to the
// session-expired route. Repeated calls within the guard window are
// dropped.
func (c *Coordinator) RedirectToSessionExpired() {
	c.dispatch(TargetSessionExpired, c.config.SessionExpiredRoute,
		c.config.SessionExpiredDelay, c.config.SessionExpiredReset, true)
}

// RedirectToLogin navigates to the sign-in route without a toast, on
// shorter windows.
func (c *Coordinator) RedirectToLogin() {
	c.dispatch(TargetLogin, c.config.LoginRoute,
		c.config.LoginDelay, c.config.LoginReset, false)
}

func (c *Coordinator) dispatch(target, route string, delay, reset time.Duration, withToast bool) {
	c.mu.Lock()
	if c.redirecting {
		c.mu.Unlock()
		c.logger.Debug().Str("target", target).Msg("redirect suppressed, one already in flight")
		c.recorder.RedirectSuppressed(target)
		return
	}
	c.redirecting = true
	toast := c.toast
	c.mu.Unlock()

	c.logger.Info().Str("target", target).Str("route", route).Msg("redirect dispatched")
	c.recorder.RedirectTriggered(target)

	if withToast && toast != nil {
		toast(c.config.ToastMessage, "warning", c.config.ToastDuration)
	}

	// The timers capture only the coordinator, never UI state, so they
	// are safe to let fire after the caller has been torn down.
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		navigate := c.navigate
		locate := c.locate
		c.mu.Unlock()

		switch {
		case navigate != nil:
			navigate(route, true)
		case locate != nil:
			locate(route)
		default:
			c.logger.Warn().Str("route", route).Msg("redirect dropped, no navigation registered")
		}
	})

	// The guard resets unconditionally: a cancelled navigation must not
	// lock redirects out forever.
	time.AfterFunc(reset, func() {
		c.mu.Lock()
		c.redirecting = false
		c.mu.Unlock()
	})
}
