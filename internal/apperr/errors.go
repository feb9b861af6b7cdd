// Package apperr defines the error kinds surfaced to callers of vault operations.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Patch failures.
	ErrAmbiguousTarget      = errors.New("ambiguous target")
	ErrMalformedDocument    = errors.New("malformed document")
	ErrUnsupportedTarget    = errors.New("unsupported target type")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrInvalidArgument      = errors.New("invalid argument")
)
