package store

const (
	createUser = `INSERT INTO users (username, email, password_hash, level)
    VALUES (?, ?, ?, ?)
    RETURNING user_id, created_at, updated_at;`

	findUserColumns = `user_id, username, email, password_hash, level,
    two_factor_secret, two_factor_enabled, failed_attempts, locked_until,
    active, last_login_at, created_at, updated_at`

	findUserByUsername = `SELECT ` + findUserColumns + `
    FROM users
    WHERE username = ? AND active = 1;`

	findUserByEmail = `SELECT ` + findUserColumns + `
    FROM users
    WHERE email = ? AND active = 1;`

	findUserByID = `SELECT ` + findUserColumns + `
    FROM users
    WHERE user_id = ?;`

	updatePassword = `UPDATE users
    SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	incrementFailedAttempts = `UPDATE users
    SET failed_attempts = failed_attempts + 1, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	resetFailedAttempts = `UPDATE users
    SET failed_attempts = 0, locked_until = NULL, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	setLockout = `UPDATE users
    SET locked_until = ?, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	updateLastLogin = `UPDATE users
    SET last_login_at = ?, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	setTwoFactorSecret = `UPDATE users
    SET two_factor_secret = ?, two_factor_enabled = 0, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	enableTwoFactor = `UPDATE users
    SET two_factor_enabled = 1, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	deactivateUser = `UPDATE users
    SET active = 0, updated_at = CURRENT_TIMESTAMP
    WHERE user_id = ?;`

	countActiveByLevel = `SELECT COUNT(*)
    FROM users
    WHERE level = ? AND active = 1;`

	createSession = `INSERT INTO sessions
    (user_id, token, refresh_token, level, client_ip, user_agent, active, created_at, expires_at, last_activity_at)
    VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
    RETURNING session_id;`

	findActiveSession = `SELECT session_id, user_id, token, refresh_token, level,
    client_ip, user_agent, active, created_at, expires_at, last_activity_at
    FROM sessions
    WHERE token = ? AND active = 1 AND expires_at > ?;`

	touchSession = `UPDATE sessions
    SET last_activity_at = ?
    WHERE token = ? AND active = 1;`

	invalidateSession = `UPDATE sessions
    SET active = 0
    WHERE token = ?;`

	invalidateUserSessions = `UPDATE sessions
    SET active = 0
    WHERE user_id = ? AND active = 1;`

	expireSessions = `UPDATE sessions
    SET active = 0
    WHERE active = 1 AND expires_at <= ?;`

	appendAuditEvent = `INSERT INTO audit_events
    (user_id, action, resource, details, client_ip, user_agent, success, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    RETURNING event_id;`

	createResetToken = `INSERT INTO password_reset_tokens
    (user_id, token, used, expires_at, created_at)
    VALUES (?, ?, 0, ?, ?)
    RETURNING token_id;`

	findResetToken = `SELECT token_id, user_id, token, used, expires_at, created_at
    FROM password_reset_tokens
    WHERE token = ?;`

	markResetTokenUsed = `UPDATE password_reset_tokens
    SET used = 1
    WHERE token_id = ?;`
)
