// Package metrics exposes counters for the request pipeline: refresh
// outcomes, retries, fail-fast rejections and redirect dispatches.
// Components report through the Recorder interface so metrics stay
// optional; NopRecorder is the default everywhere.
package metrics

// Refresh outcome labels.
const (
	ResultRefreshed    = "refreshed"
	ResultFailed       = "failed"
	ResultMissingToken = "missing_refresh_token"
)

// Recorder receives pipeline events.
type Recorder interface {
	// RefreshCompleted counts one finished refresh exchange by outcome.
	RefreshCompleted(result string)

	// RetryPerformed counts one replayed request after a refresh.
	RetryPerformed()

	// RequestRejected counts one fail-fast rejection (no stored token).
	RequestRejected()

	// RedirectTriggered counts one dispatched redirect by target.
	RedirectTriggered(target string)

	// RedirectSuppressed counts one redirect dropped by the guard.
	RedirectSuppressed(target string)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) RefreshCompleted(string)   {}
func (NopRecorder) RetryPerformed()           {}
func (NopRecorder) RequestRejected()          {}
func (NopRecorder) RedirectTriggered(string)  {}
func (NopRecorder) RedirectSuppressed(string) {}
