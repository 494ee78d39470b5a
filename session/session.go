// Package session owns the persisted session state: the token pair and
// the cached profile blobs. It is the only writer of those keys; the
// transport and refresh layers go through it.
package session

import (
	"errors"
)

// Persisted key layout. The names mirror what the dashboard stores, so
// a file or redis store can be inspected directly.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyAccount      = "account"
	KeyThemeMode    = "theme-mode"
)

var (
	// ErrIncompletePair is returned by SaveTokens when either token is
	// empty. A session is both tokens or nothing.
	ErrIncompletePair = errors.New("session: token pair requires both access and refresh token")
)

// Pair is an access/refresh token pair. Both fields set means a valid
// session; both empty means logged out. Mixed states never escape the
// Store.
type Pair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether the pair represents a live session.
func (p Pair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Empty reports whether the pair is fully absent.
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}
