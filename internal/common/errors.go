// Package common defines shared constants and sentinel errors used across
// the streamvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Request-level errors, mapped to HTTP status codes at the API boundary.
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("already exists")
	ErrorNotFound     = errors.New("not found")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorUpstream marks failures of external collaborators (media host).
	ErrorUpstream = errors.New("upstream error")

	// ErrorInternal hides infrastructure failures from callers.
	ErrorInternal = errors.New("internal error")

	// Token lifecycle errors. Both map to ErrorUnauthorized at the service
	// boundary; they are kept distinct for logging.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
