package redirect

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig shrinks the windows so tests finish quickly.
func fastConfig() Config {
	return Config{
		SessionExpiredDelay: 10 * time.Millisecond,
		SessionExpiredReset: 50 * time.Millisecond,
		LoginDelay:          5 * time.Millisecond,
		LoginReset:          30 * time.Millisecond,
	}
}

type recording struct {
	mu          sync.Mutex
	navigations []string
	toasts      []string
	locations   []string
}

func (r *recording) navigate(path string, replace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigations = append(r.navigations, path)
}

func (r *recording) toast(message, severity string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, message)
}

func (r *recording) locate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations = append(r.locations, path)
}

func (r *recording) counts() (navigations, toasts, locations int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.navigations), len(r.toasts), len(r.locations)
}

func TestRedirectDeduplication(t *testing.T) {
	rec := &recording{}
	c := New(WithConfig(fastConfig()))
	c.RegisterNavigation(rec.navigate)
	c.RegisterToast(rec.toast)

	// Three triggers inside the debounce window
	c.RedirectToSessionExpired()
	c.RedirectToSessionExpired()
	c.RedirectToSessionExpired()

	time.Sleep(30 * time.Millisecond)

	navigations, toasts, _ := rec.counts()
	assert.Equal(t, 1, navigations, "exactly one navigation")
	assert.Equal(t, 1, toasts, "exactly one toast")

	rec.mu.Lock()
	assert.Equal(t, "/session-expired", rec.navigations[0])
	rec.mu.Unlock()
}

func TestGuardResetsAfterWindow(t *testing.T) {
	rec := &recording{}
	c := New(WithConfig(fastConfig()))
	c.RegisterNavigation(rec.navigate)

	c.RedirectToSessionExpired()
	assert.True(t, c.IsRedirecting())

	// The guard resets on its own even though no navigation completed
	require.Eventually(t, func() bool { return !c.IsRedirecting() },
		500*time.Millisecond, 5*time.Millisecond)

	c.RedirectToSessionExpired()
	time.Sleep(30 * time.Millisecond)

	navigations, _, _ := rec.counts()
	assert.Equal(t, 2, navigations, "a later trigger redirects again")
}

func TestRedirectToLoginSkipsToast(t *testing.T) {
	rec := &recording{}
	c := New(WithConfig(fastConfig()))
	c.RegisterNavigation(rec.navigate)
	c.RegisterToast(rec.toast)

	c.RedirectToLogin()
	time.Sleep(20 * time.Millisecond)

	navigations, toasts, _ := rec.counts()
	assert.Equal(t, 1, navigations)
	assert.Equal(t, 0, toasts)

	rec.mu.Lock()
	assert.Equal(t, "/sign-in", rec.navigations[0])
	rec.mu.Unlock()
}

func TestLocationFallback(t *testing.T) {
	rec := &recording{}
	c := New(WithConfig(fastConfig()), WithLocation(rec.locate))

	// No navigation registered yet: full location change
	c.RedirectToSessionExpired()
	time.Sleep(30 * time.Millisecond)

	navigations, _, locations := rec.counts()
	assert.Equal(t, 0, navigations)
	assert.Equal(t, 1, locations)
}

func TestUnregisteredCallbacksTolerated(t *testing.T) {
	c := New(WithConfig(fastConfig()))

	// No callbacks anywhere: must not panic, toast is dropped
	c.RedirectToSessionExpired()
	time.Sleep(30 * time.Millisecond)
}

func TestResetCallbacks(t *testing.T) {
	rec := &recording{}
	c := New(WithConfig(fastConfig()), WithLocation(rec.locate))
	c.RegisterNavigation(rec.navigate)
	c.RegisterToast(rec.toast)

	c.ResetNavigation()
	c.ResetToast()

	c.RedirectToSessionExpired()
	time.Sleep(30 * time.Millisecond)

	navigations, toasts, locations := rec.counts()
	assert.Equal(t, 0, navigations, "reset navigation is not called")
	assert.Equal(t, 0, toasts, "reset toast is not called")
	assert.Equal(t, 1, locations, "falls back to location change")
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "/session-expired", c.SessionExpiredRoute)
	assert.Equal(t, "/sign-in", c.LoginRoute)
	assert.Equal(t, 500*time.Millisecond, c.SessionExpiredDelay)
	assert.Equal(t, 2*time.Second, c.SessionExpiredReset)
}
