// Package common defines the error taxonomy and small helpers shared by the
// cake library server and client. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Registration errors.
	ErrDuplicateEmail    = errors.New("user already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrValidation        = errors.New("validation error")

	// Login errors. ErrInvalidCredentials is returned both for an unknown
	// email and for a wrong password.
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Token errors. Callers treat both as "not authenticated".
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrHashFormat is returned when a stored password digest cannot be parsed.
	ErrHashFormat = errors.New("malformed password hash")
)
