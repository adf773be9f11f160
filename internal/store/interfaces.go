package store

import (
	"context"
	"time"

	"github.com/tvsaude/auth-service/models"
)

// UserRepository is the credential store: it persists user records and
// performs the targeted field mutations the auth service needs during the
// login and 2FA lifecycles.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	IncrementFailedAttempts(ctx context.Context, userID int64) error
	ResetFailedAttempts(ctx context.Context, userID int64) error
	SetLockout(ctx context.Context, userID int64, until time.Time) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	SetTwoFactorSecret(ctx context.Context, userID int64, secret string) error
	EnableTwoFactor(ctx context.Context, userID int64) error
	DeactivateUser(ctx context.Context, userID int64) error
	CountActiveByLevel(ctx context.Context, level models.PermissionLevel) (int64, error)
}

// SessionRepository persists issued session token pairs. The persistent
// store is the source of truth; the in-memory cache only mirrors it.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) (models.Session, error)
	FindActiveSession(ctx context.Context, token string, now time.Time) (models.Session, error)
	TouchSession(ctx context.Context, token string, at time.Time) error
	InvalidateSession(ctx context.Context, token string) error
	InvalidateUserSessions(ctx context.Context, userID int64) error
	ExpireSessions(ctx context.Context, now time.Time) (int64, error)
}

// AuditRepository is the append-only security event log.
type AuditRepository interface {
	AppendEvent(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error)
	ListEvents(ctx context.Context, filter models.AuditFilter) ([]models.AuditEvent, error)
}

// ResetTokenRepository persists single-use password-reset tokens.
type ResetTokenRepository interface {
	CreateResetToken(ctx context.Context, token models.PasswordResetToken) (models.PasswordResetToken, error)
	FindResetToken(ctx context.Context, token string) (models.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenID int64) error
}
