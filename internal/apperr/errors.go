// Package apperr defines the sentinel errors shared across services.
package apperr

import "errors"

var (
	// ErrNotFound marks a missing component or pattern.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks malformed client input (bad spec, bad filter value).
	ErrInvalid = errors.New("invalid input")
	// ErrUnavailable marks an upstream dependency (embedding backend,
	// generation API) that is down or timed out.
	ErrUnavailable = errors.New("service unavailable")
)
