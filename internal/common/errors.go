// Package common defines shared constants and sentinel errors used across
// the Tijori server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Credential errors. Both wrap ErrorUnauthorized.
	ErrInvalidEmail    = fmt.Errorf("%w: unknown email", ErrorUnauthorized)
	ErrInvalidPassword = fmt.Errorf("%w: wrong password", ErrorUnauthorized)

	// Auth errors (invalid or malformed token).
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired         = errors.New("token expired")
	ErrAccountGone          = errors.New("account no longer exists")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
)
