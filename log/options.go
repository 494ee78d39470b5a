package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/authkit/log/mask"
)

// Option configures a Logger.
type Option func(*Logger)

// WithLevel sets the log level.
func WithLevel(level zerolog.Level) Option {
	return func(l *Logger) {
		l.Logger = l.Logger.Level(level)
	}
}

// WithCaller adds caller information to every event.
func WithCaller() Option {
	return func(l *Logger) {
		l.Logger = l.Logger.With().Caller().Logger()
	}
}

// WithMask installs a credential masking hook. Passing nil installs the
// builtin credential rules.
func WithMask(hook *mask.Hook) Option {
	return func(l *Logger) {
		if hook == nil {
			hook = mask.NewCredentialHook()
		}
		l.maskHook = hook
	}
}
