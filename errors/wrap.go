package errors

import (
	goerrors "errors"
)

// Re-exports of the standard library helpers, so callers work with the
// error chain without a second errors import.

// Unwrap returns err's wrapped error, or nil when err does not wrap
// one.
func Unwrap(err error) error {
	return goerrors.Unwrap(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain matching target's type and
// assigns it.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Join combines errors into one; nil values are discarded.
func Join(errs ...error) error {
	return goerrors.Join(errs...)
}
