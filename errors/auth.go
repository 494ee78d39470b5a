package errors

// Authentication failure taxonomy shared by the request pipeline.
//
// MissingCredential and AuthenticationFailed both map to 401, but the
// former is raised before any network call is made while the latter
// reflects a server-side rejection that survived the retry protocol.
// Everything outside this taxonomy is a transient error and is passed
// through to the caller untouched.
var (
	// ErrMissingCredential is returned when a request requires a token
	// and none is stored. The request never reaches the network.
	ErrMissingCredential = New(401, "missing credential")

	// ErrAuthenticationFailed is returned when the server rejected the
	// request with 401 and no retry was available, or the retry failed
	// too. The session has been cleared by the time callers see it.
	ErrAuthenticationFailed = New(401, "authentication failed")

	// ErrRefreshFailed is returned when the refresh exchange itself
	// failed or returned an incomplete token pair. Handled identically
	// to ErrAuthenticationFailed.
	ErrRefreshFailed = New(401, "token refresh failed")
)

// IsAuthError reports whether err belongs to the authentication failure
// taxonomy. Transient network errors return false.
func IsAuthError(err error) bool {
	return Is(err, ErrMissingCredential) ||
		Is(err, ErrAuthenticationFailed) ||
		Is(err, ErrRefreshFailed)
}

// Common constructors kept from the HTTP status grid; the pipeline only
// reaches for a handful of codes.
func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(401, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(403, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

func RequestTimeout(format string, args ...any) *Error {
	return New(408, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(503, format, args...)
}
