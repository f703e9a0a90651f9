package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrBadRequest     = errors.New("bad request")
	ErrNotFound       = errors.New("resource not found")
	ErrInternalServer = errors.New("internal server error")

	// Security classification errors. Callers only ever see the generic
	// message; the specific reason goes to the audit trail.
	ErrRateLimited        = errors.New("too many login attempts")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// ErrSecondFactorRequired is a protocol step, not a failure: the
	// password checked out but a TOTP code must be submitted.
	ErrSecondFactorRequired = errors.New("second factor required")

	// ErrPersistence covers audit/store write failures. Audit writes
	// swallow it; privileged-data CRUD surfaces it as a 500.
	ErrPersistence = errors.New("persistence failure")
)
