// Package config loads the kit's configuration: file based through
// viper, validated, with struct-tag defaults and optional hot reload.
package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/authkit/core/validator"
	"github.com/kochabx/authkit/log"
)

// Config manages loading and reloading a configuration target.
type Config struct {
	mu       sync.RWMutex
	viper    *viper.Viper
	validate validator.Validator
	target   any
	loader   Loader
	watch    bool
}

// New creates a Config for the given target. Without a loader option a
// FileLoader reading "authkit.yaml" from the working directory is used.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Validate,
		target:   target,
		watch:    true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader("authkit.yaml", []string{"."}, c.viper, c.validate)
	}

	return c
}

// Load reads the configuration and, when watching is enabled, starts
// reacting to file changes.
func (c *Config) Load() error {
	c.mu.Lock()
	if err := c.loader.Load(c.target); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if c.watch {
		return c.Watch()
	}
	return nil
}

// Reload re-reads the configuration into the target.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loader.Load(c.target)
}

// Watch reloads the target whenever the loader reports a change.
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		if err := c.Reload(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		log.Info().Msg("config reloaded successfully")
	})
}

// GetViper returns the underlying viper instance.
func (c *Config) GetViper() *viper.Viper {
	return c.viper
}
