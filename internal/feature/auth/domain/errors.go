// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// Adapters translate storage failures into these; handlers map them to HTTP responses.
var (
	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when creating or updating a user with an email that already exists.
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrPasswordTooShort is returned when a new password is below the minimum length.
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrInvalidCredentials indicates that the provided email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound is returned when no session exists for a token ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidToken is returned for malformed, expired, superseded or orphaned tokens.
	ErrInvalidToken = errors.New("invalid token")
)
