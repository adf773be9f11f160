package models

import "time"

// Audit action names recorded by the authentication core. The set is open:
// collaborating services may append their own action names through the same
// log, these constants cover the security events the core itself produces.
const (
	AuditLoginSuccess     = "auth.login"
	AuditLoginFailed      = "auth.login_failed"
	AuditLogout           = "auth.logout"
	AuditRegister         = "auth.register"
	AuditTwoFactorSetup   = "auth.2fa_setup"
	AuditTwoFactorEnabled = "auth.2fa_enabled"
	AuditTwoFactorFailed  = "auth.2fa_failed"
	AuditPermissionDenied = "auth.permission_denied"
	AuditPasswordReset    = "auth.password_reset"
	AuditBootstrap        = "auth.bootstrap"
)

// AuditEvent is an immutable record of a security-relevant action.
// Events are append-only: the core never mutates or deletes them, retention
// is an external concern.
type AuditEvent struct {
	// EventID is the internal unique identifier of the log entry.
	EventID int64 `json:"id"`

	// UserID references the acting user. Zero for events not attributable
	// to a known account (e.g. failed login against an unknown username);
	// stored as NULL in that case.
	UserID int64 `json:"user_id,omitempty"`

	// Action is the event name, e.g. "auth.login_failed".
	Action string `json:"action"`

	// Resource optionally identifies the object acted upon
	// (e.g. the action name that was denied).
	Resource string `json:"resource,omitempty"`

	// Details is free-form context. Never contains passwords or secrets.
	Details string `json:"details,omitempty"`

	// ClientIP and UserAgent attribute the event to a client.
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	// Success records the outcome of the attempted action.
	Success bool `json:"success"`

	// CreatedAt is the event timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the AuditEvent model.
func (e AuditEvent) TableName() string {
	return "audit_events"
}

// AuditFilter narrows an audit history query. Zero-valued fields are not
// applied. Limit of 0 falls back to the repository default.
type AuditFilter struct {
	UserID  int64
	Action  string
	Success *bool
	From    time.Time
	To      time.Time
	Limit   uint64
}
