package models

import "time"

// PasswordResetToken is a single-use credential for the password recovery
// flow. A token is consumed (marked used) on redemption; a used or expired
// token is rejected.
type PasswordResetToken struct {
	TokenID   int64     `json:"-"`
	UserID    int64     `json:"-"`
	Token     string    `json:"-"`
	Used      bool      `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the token can still be redeemed at now.
func (t PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// TableName returns the name of the database table
// associated with the PasswordResetToken model.
func (t PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
