// Package policy decides which requests need credentials and which
// routes need a live session. Pure predicates, no I/O.
package policy

import (
	"net/url"
	"strings"
)

// Default is the shared policy instance with the standard endpoint lists.
var Default = New()

// Policy holds the public endpoint allow-list and the protected route
// prefixes.
type Policy struct {
	publicEndpoints   []string
	protectedPrefixes []string
}

// Option configures a Policy.
type Option func(*Policy)

// WithPublicEndpoints replaces the allow-list of endpoints that never
// require a token.
func WithPublicEndpoints(endpoints ...string) Option {
	return func(p *Policy) {
		p.publicEndpoints = endpoints
	}
}

// WithProtectedPrefixes replaces the set of route prefixes that require
// a live session.
func WithProtectedPrefixes(prefixes ...string) Option {
	return func(p *Policy) {
		p.protectedPrefixes = prefixes
	}
}

// New creates a Policy. Without options it covers the standard
// unauthenticated endpoints (login, register, refresh, password reset)
// and the dashboard's protected sections.
func New(opts ...Option) *Policy {
	p := &Policy{
		publicEndpoints: []string{
			"/auth/login",
			"/auth/register",
			"/auth/refresh",
			"/auth/password-reset",
		},
		protectedPrefixes: []string{
			"/operation",
			"/profile",
			"/account",
			"/settings",
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// RequiresAuthentication reports whether a request to path must carry an
// access token. The path is normalized first: scheme, host, query and
// fragment are stripped.
//
// Matching is by substring containment, not exact segment equality, so
// an allow-listed entry anywhere in the path marks the whole request
// public. That is intentionally broad and can over-match paths that
// merely contain an allow-listed segment (a request to
// /user/auth/login-history is treated as public).
func (p *Policy) RequiresAuthentication(path string) bool {
	normalized := normalizePath(path)

	for _, endpoint := range p.publicEndpoints {
		if strings.Contains(normalized, endpoint) {
			return false
		}
	}
	return true
}

// IsProtectedRoute reports whether the pathname needs a valid session:
// it starts with one of the protected prefixes, or is exactly the root.
func (p *Policy) IsProtectedRoute(pathname string) bool {
	if pathname == "/" {
		return true
	}

	for _, prefix := range p.protectedPrefixes {
		if strings.HasPrefix(pathname, prefix) {
			return true
		}
	}
	return false
}

// normalizePath reduces a URL or path to its path component.
func normalizePath(path string) string {
	u, err := url.Parse(path)
	if err != nil {
		// Unparseable input: fall back to manual query/fragment stripping.
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			return path[:i]
		}
		return path
	}
	return u.Path
}

// RequiresAuthentication applies the default policy.
func RequiresAuthentication(path string) bool {
	return Default.RequiresAuthentication(path)
}

// IsProtectedRoute applies the default policy.
func IsProtectedRoute(pathname string) bool {
	return Default.IsProtectedRoute(pathname)
}
