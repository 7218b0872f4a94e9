// Package apperr defines the sentinel errors shared across the repository,
// auth, and controller layers. Callers match them with errors.Is; route
// boundaries map them to HTTP status codes.
package apperr

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUser covers both username and email collisions; the two
	// are deliberately not distinguished in responses.
	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrNotFoundOrForbidden conflates a missing todo with an ownership
	// mismatch so callers cannot probe for existence of other users' todos.
	ErrNotFoundOrForbidden = errors.New("todo not found or access denied")

	// Auth errors. Login failures use the same error whether the user is
	// unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")

	// ErrGuestLimitReached signals the unauthenticated creation cap.
	ErrGuestLimitReached = errors.New("guest todo limit reached")
)
