package redis

import (
	"errors"
)

var (
	// ErrInvalidConfig is returned when the config is nil.
	ErrInvalidConfig = errors.New("redis: invalid configuration")

	// ErrEmptyAddrs is returned when no address is configured.
	ErrEmptyAddrs = errors.New("redis: addrs cannot be empty")

	// ErrClientNotInitialized is returned when the client is gone.
	ErrClientNotInitialized = errors.New("redis: client not initialized")
)
