// Package redis provides a Storage backend on go-redis. Keys are
// namespaced with a configurable prefix so several clients can share
// one database.
package redis

import (
	"context"

	"github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/store"
)

// Storage is a Redis-backed store.Storage.
type Storage struct {
	client goredis.UniversalClient
	config *Config
	logger *log.Logger
}

// New creates a Storage and verifies connectivity. Single, cluster and
// sentinel modes are selected automatically from the config.
func New(cfg *Config, opts ...Option) (*Storage, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	options := applyOptions(opts)
	logger := options.logger
	if logger == nil {
		logger = log.G
	}

	s := &Storage{
		config: cfg,
		logger: logger,
		client: goredis.NewUniversalClient(buildUniversalOptions(cfg)),
	}

	var success bool
	defer func() {
		if !success {
			s.client.Close()
		}
	}()

	if err := s.setupHooks(options); err != nil {
		return nil, err
	}
	if err := s.Ping(context.Background()); err != nil {
		return nil, err
	}

	success = true
	s.logger.Debug().Interface("addrs", cfg.Addrs).Str("prefix", cfg.KeyPrefix).Msg("redis storage ready")
	return s, nil
}

func buildUniversalOptions(cfg *Config) *goredis.UniversalOptions {
	return &goredis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		PoolTimeout:  cfg.PoolTimeout,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,

		TLSConfig: cfg.TLSConfig,
	}
}

func (s *Storage) setupHooks(options *storageOptions) error {
	for _, hook := range options.hooks {
		s.client.AddHook(hook)
	}

	if options.enableTracing {
		if err := redisotel.InstrumentTracing(s.client); err != nil {
			return err
		}
	}
	if options.enableMetrics {
		if err := redisotel.InstrumentMetrics(s.client); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) key(key string) string {
	return s.config.KeyPrefix + key
}

// Get implements store.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err == goredis.Nil {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set implements store.Storage. Values do not expire; the session layer
// owns their lifecycle.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// Remove implements store.Storage. A single DEL covers all keys, which
// Redis executes atomically.
func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.key(key)
	}
	return s.client.Del(ctx, prefixed...).Err()
}

// Clear implements store.Storage: every key under the prefix is removed.
func (s *Storage) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Ping verifies connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotInitialized
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Storage) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
