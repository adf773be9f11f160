package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, credential data, and lockout/2FA bookkeeping.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login identifier.
	// 3–30 characters, alphanumeric and underscore only.
	Username string `json:"username"`

	// Email is the unique contact address of the user.
	Email string `json:"email"`

	// PasswordHash is the bcrypt digest of the user's password.
	// It embeds a per-record random salt and the cost factor.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	// Level is the permission level assigned to the user.
	Level PermissionLevel `json:"level"`

	// TwoFactorSecret is the shared TOTP secret, empty if 2FA was never
	// set up. A non-empty secret with TwoFactorEnabled=false is pending
	// confirmation. Never exposed via JSON.
	TwoFactorSecret string `json:"-"`

	// TwoFactorEnabled reports whether TOTP verification is required at login.
	TwoFactorEnabled bool `json:"two_factor_enabled"`

	// FailedAttempts counts consecutive failed login attempts since the
	// last successful login.
	FailedAttempts int `json:"-"`

	// LockedUntil is the instant until which login is refused for this
	// account. Zero if the account is not locked.
	LockedUntil time.Time `json:"-"`

	// Active marks the account as usable. Accounts are soft-deactivated,
	// never physically deleted.
	Active bool `json:"active"`

	// LastLoginAt is the timestamp of the most recent successful login.
	// Zero if the user has never logged in.
	LastLoginAt time.Time `json:"last_login_at,omitempty"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the most recent mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns a projection of the user safe to hand to callers:
// identical identity fields with all credential material stripped.
func (u User) Public() User {
	u.PasswordHash = ""
	u.TwoFactorSecret = ""
	u.FailedAttempts = 0
	u.LockedUntil = time.Time{}
	return u
}

// IsLocked reports whether the account lockout is still in effect at now.
func (u User) IsLocked(now time.Time) bool {
	return !u.LockedUntil.IsZero() && now.Before(u.LockedUntil)
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
