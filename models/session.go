package models

import "time"

// Session is an ephemeral credential binding issued at successful login.
// The persistent store is the source of truth; the in-memory session cache
// holds value copies for fast lookup.
type Session struct {
	// SessionID is the internal unique identifier of the session row.
	SessionID int64 `json:"-"`

	// UserID references the owning user.
	UserID int64 `json:"user_id"`

	// Token is the opaque bearer credential presented on every request.
	// 256 bits of entropy, hex-encoded. Never logged.
	Token string `json:"-"`

	// RefreshToken is reserved for future session renewal flows.
	// Same entropy requirements as Token. Never logged.
	RefreshToken string `json:"-"`

	// Level is the permission level of the owning user at login time,
	// carried on the session so authorization checks avoid a user lookup.
	Level PermissionLevel `json:"level"`

	// ClientIP is the remote address observed at session creation.
	ClientIP string `json:"client_ip"`

	// UserAgent is the client identification observed at session creation.
	UserAgent string `json:"user_agent"`

	// Active is flipped to false on logout or expiry sweep. Sessions are
	// invalidated by flag, never deleted.
	Active bool `json:"-"`

	// CreatedAt is the session issuance instant.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is always CreatedAt plus the fixed session lifetime.
	ExpiresAt time.Time `json:"expires_at"`

	// LastActivityAt is refreshed on every authorized request.
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Expired reports whether the session lifetime has elapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TableName returns the name of the database table
// associated with the Session model.
func (s Session) TableName() string {
	return "sessions"
}

// ClientInfo carries the request attribution captured at login and on
// audited operations.
type ClientInfo struct {
	IP        string
	UserAgent string
}
