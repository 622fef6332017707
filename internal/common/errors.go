// Package common defines shared constants and sentinel errors used across
// the workbench server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors. ErrorNotFound is returned both when a row is
	// absent and when it exists under a different owner; callers cannot
	// tell the two apart.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
