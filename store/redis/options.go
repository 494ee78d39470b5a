package redis

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/kochabx/authkit/log"
)

type storageOptions struct {
	logger        *log.Logger
	hooks         []goredis.Hook
	enableTracing bool
	enableMetrics bool
}

// Option configures the Redis storage.
type Option func(*storageOptions)

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) Option {
	return func(o *storageOptions) {
		o.logger = logger
	}
}

// WithHook adds a custom go-redis hook.
func WithHook(hook goredis.Hook) Option {
	return func(o *storageOptions) {
		o.hooks = append(o.hooks, hook)
	}
}

// WithTracing instruments the client with OpenTelemetry tracing.
func WithTracing() Option {
	return func(o *storageOptions) {
		o.enableTracing = true
	}
}

// WithMetrics instruments the client with OpenTelemetry metrics.
func WithMetrics() Option {
	return func(o *storageOptions) {
		o.enableMetrics = true
	}
}

func applyOptions(opts []Option) *storageOptions {
	options := &storageOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}
