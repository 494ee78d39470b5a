// Package log wraps zerolog with the writers and credential masking the
// kit packages use. Every package logs through the global G or an
// injected *Logger.
package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/authkit/core/tag"
	"github.com/kochabx/authkit/log/mask"
	"github.com/kochabx/authkit/log/writer"
)

// Logger wraps a zerolog.Logger with optional credential masking and
// resource cleanup.
type Logger struct {
	zerolog.Logger
	maskHook *mask.Hook
	writer   io.Writer
	closer   io.Closer
}

// MaskHook returns the installed masking hook, nil when masking is off.
func (l *Logger) MaskHook() *mask.Hook {
	return l.maskHook
}

// Close releases the underlying writer when it owns one (file writers).
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

func newLogger(w io.Writer, opts ...Option) *Logger {
	logger := &Logger{
		writer: w,
		Logger: zerolog.New(w).With().Timestamp().Logger(),
	}

	for _, opt := range opts {
		opt(logger)
	}

	// A mask hook filters the raw byte stream, so the logger has to be
	// rebuilt on top of the masking writer. Options are re-applied
	// because the rebuild discards level/caller settings.
	if logger.maskHook != nil {
		mw := mask.NewWriter(w, logger.maskHook)
		logger.Logger = zerolog.New(mw).With().Timestamp().Logger()

		for _, opt := range opts {
			opt(logger)
		}
	}

	return logger
}

// New creates a Logger writing to the console.
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewFile creates a Logger writing to a rotating file.
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	w, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	logger := newLogger(w, opts...)

	if closer, ok := w.(io.Closer); ok {
		logger.closer = closer
	}

	return logger, nil
}

// NewMulti creates a Logger writing to both a rotating file and the
// console.
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}

	multi := zerolog.MultiLevelWriter(fw, writer.Console())
	logger := newLogger(multi, opts...)

	if closer, ok := fw.(io.Closer); ok {
		logger.closer = closer
	}

	return logger, nil
}
