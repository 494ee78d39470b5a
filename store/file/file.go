// Package file provides a Storage backend persisted to a single JSON
// file. Every mutation rewrites the file through a temp-file rename, so
// the full key set is replaced atomically: a crash mid-write never
// leaves a mismatched token pair on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kochabx/authkit/store"
)

// Storage is a file-backed store.Storage. Contents are cached in memory
// and flushed on every mutation.
type Storage struct {
	mu   sync.RWMutex
	path string
	box  *secretBox // nil when storing plaintext
	data map[string]string
}

// Option configures a Storage.
type Option func(*Storage)

// WithEncryptionKey enables at-rest encryption with a 32-byte key.
// Derive one from a passphrase with DeriveKey.
func WithEncryptionKey(key []byte) Option {
	return func(s *Storage) {
		s.box = &secretBox{key: key}
	}
}

// New opens or creates the storage file at path.
func New(path string, opts ...Option) (*Storage, error) {
	s := &Storage{
		path: path,
		data: make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.box != nil {
		if err := s.box.init(); err != nil {
			return nil, err
		}
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
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
	return s.persist()
}

// Remove implements store.Storage.
func (s *Storage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return s.persist()
}

// Clear implements store.Storage.
func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]string)
	return s.persist()
}

// load reads the file into the in-memory cache. A missing file is an
// empty store.
func (s *Storage) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file store: read %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return nil
	}

	if s.box != nil {
		raw, err = s.box.open(raw)
		if err != nil {
			return fmt.Errorf("file store: decrypt %s: %w", s.path, err)
		}
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("file store: parse %s: %w", s.path, err)
	}
	return nil
}

// persist writes the whole map to a temp file and renames it over the
// target. Caller holds the write lock.
func (s *Storage) persist() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("file store: marshal: %w", err)
	}

	if s.box != nil {
		raw, err = s.box.seal(raw)
		if err != nil {
			return fmt.Errorf("file store: encrypt: %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file store: write temp: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file store: chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: close temp: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}
