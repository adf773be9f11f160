package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrIdentityAlreadyExists is returned when an attempt to create a new
	// user fails because a user with the same username or email already
	// exists in the database.
	ErrIdentityAlreadyExists = errors.New("username or email already exists")

	// ErrUserNotFound is returned when a query expected to match a user
	// record produces an empty result set.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when a session lookup by token matches
	// no active, non-expired row.
	ErrSessionNotFound = errors.New("session not found")

	// ErrResetTokenNotFound is returned when a password-reset token lookup
	// matches no row.
	ErrResetTokenNotFound = errors.New("password reset token not found")
)
