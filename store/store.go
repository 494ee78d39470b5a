// Package store defines the durable key-value primitive the session
// layer persists to. Backends live in the subpackages: memory for tests
// and ephemeral sessions, file for single-user clients, redis for
// shared or server-assisted session storage.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("store: key not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store: storage is closed")
)

// Storage is a durable string key-value store.
//
// Implementations must make Remove of several keys atomic-in-effect: a
// reader in the same process never observes a partially removed set.
type Storage interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the given keys in one operation. Missing keys are
	// not an error.
	Remove(ctx context.Context, keys ...string) error

	// Clear removes every key owned by this storage.
	Clear(ctx context.Context) error
}
