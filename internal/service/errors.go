package service

import "errors"

// Sentinel errors forming the failure taxonomy of the auth service.
// Callers should use [errors.Is] to match against these values; the HTTP
// layer maps them onto response statuses.
var (
	// ErrValidation indicates malformed input (username/email format,
	// password strength, unknown permission level). The wrapped message
	// names the violated rule; the caller can recover by correcting input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateIdentity is returned when registration collides with an
	// existing username or email.
	ErrDuplicateIdentity = errors.New("username or email already taken")

	// ErrInvalidCredentials is returned for both unknown usernames and
	// wrong passwords, deliberately indistinguishable to prevent
	// username enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTwoFactorRequired is returned when a 2FA-enabled user logs in
	// without supplying a TOTP code.
	ErrTwoFactorRequired = errors.New("two-factor code required")

	// ErrInvalidTwoFactorCode is returned when the supplied TOTP code does
	// not match within the accepted drift window.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// ErrAccountLocked is returned while a lockout is in effect. The
	// condition is temporary and self-resolves after the lockout window.
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrInvalidSession is returned when a bearer token resolves to no
	// active, unexpired session.
	ErrInvalidSession = errors.New("invalid or expired session")

	// ErrUnknownAction is returned when an authorization check names an
	// action missing from the permission table.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInsufficientPermission is returned when the session's permission
	// level is not in the action's authorized set.
	ErrInsufficientPermission = errors.New("insufficient permission")

	// ErrInvalidResetToken is returned when a password-reset token is
	// unknown, already used, or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrStorageUnavailable wraps persistent store I/O failures. Fatal to
	// the current operation but not to the process; callers should treat
	// it as retryable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
