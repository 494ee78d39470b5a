// Package memory provides an in-process Storage backend. Sessions kept
// here do not survive a restart; it backs tests and ephemeral clients.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/kochabx/authkit/store"
)

// Storage is a map-backed store.Storage.
type Storage struct {
	mu   sync.RWMutex
	data map[string]string
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{
		data: make(map[string]string),
	}
}

// Get implements store.Storage.
func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return value, nil
}

// Set implements store.Storage.
func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Remove implements store.Storage. All keys are deleted under one lock,
// so a concurrent reader sees either all of them or none.
func (s *Storage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// Clear implements store.Storage.
func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]string)
	return nil
}

// Snapshot returns a copy of the current contents. Test helper.
func (s *Storage) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.data)
}
