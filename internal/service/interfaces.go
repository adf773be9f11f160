package service

import (
	"context"

	"github.com/tvsaude/auth-service/models"
)

// RegisterInput carries a registration request into the auth service.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Level    models.PermissionLevel
	Client   models.ClientInfo
}

// LoginInput carries an authentication attempt into the auth service.
// TwoFactorCode is empty when the client has not (yet) supplied one.
type LoginInput struct {
	Username      string
	Password      string
	TwoFactorCode string
	Client        models.ClientInfo
}

// AuthService orchestrates registration, login, session issuance and
// validation, permission checks, 2FA enrollment, password recovery, and
// first-run bootstrap.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, in LoginInput) (models.LoginResult, error)
	Authenticate(ctx context.Context, token string) (models.Session, error)
	CheckPermission(ctx context.Context, token, action string) (models.Session, error)
	Logout(ctx context.Context, token string, client models.ClientInfo) error
	SetupTwoFactor(ctx context.Context, userID int64) (models.TwoFactorSetup, error)
	VerifyTwoFactor(ctx context.Context, userID int64, code string) error
	RequestPasswordReset(ctx context.Context, email string, client models.ClientInfo) (models.PasswordResetToken, error)
	ResetPassword(ctx context.Context, token, newPassword string, client models.ClientInfo) error
	Bootstrap(ctx context.Context) error
}

// AuditService records security-relevant events and exposes read-only
// access to the event history for reporting and compliance views.
type AuditService interface {
	Record(ctx context.Context, event models.AuditEvent) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEvent, error)
}
