package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateEmail signals a registration against an already-taken email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOrExpiredToken covers every reset-token failure mode: unknown,
	// expired, already consumed. Callers must not be able to tell which.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	// ErrUserNotFound is the reset-flow desync case: a live token whose email
	// no longer resolves to a user. Distinct from ErrNotFound so the HTTP layer
	// can keep the original 404 contract on the redemption endpoint.
	ErrUserNotFound = errors.New("user not found for token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
