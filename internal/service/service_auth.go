package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tvsaude/auth-service/internal/config"
	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/store"
	"github.com/tvsaude/auth-service/internal/utils"
	"github.com/tvsaude/auth-service/models"
)

// Bootstrap credentials created on first run when no super-admin exists.
// The startup log demands immediate rotation.
const (
	BootstrapUsername = "admin"
	BootstrapEmail    = "admin@tvsaude.local"
	BootstrapPassword = "TvSaude#Mudar1"
)

// authService is the concrete implementation of [AuthService]. It
// orchestrates the credential store, session store and cache, rate limiter,
// permission model, and audit log.
type authService struct {
	users       store.UserRepository
	sessions    store.SessionRepository
	resetTokens store.ResetTokenRepository
	audit       AuditService

	cache       *SessionCache
	limiter     *RateLimiter
	permissions *PermissionModel

	cfg    config.Auth
	logger *logger.Logger

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewAuthService constructs an [AuthService] wired to the given storages
// and collaborators, with policy parameters taken from cfg.
//
// The returned service is safe for concurrent use: the cache and limiter
// carry their own locks, everything else is read-only after construction.
func NewAuthService(
	storages *store.Storages,
	audit AuditService,
	cache *SessionCache,
	limiter *RateLimiter,
	permissions *PermissionModel,
	cfg config.Auth,
	logger *logger.Logger,
) AuthService {
	return &authService{
		users:       storages.UserRepository,
		sessions:    storages.SessionRepository,
		resetTokens: storages.ResetTokenRepository,
		audit:       audit,
		cache:       cache,
		limiter:     limiter,
		permissions: permissions,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a new user account.
//
// It validates username and email formats, the password strength policy,
// and the permission level, then hashes the password and persists the
// account.
//
// Returns the public projection of the persisted user or:
//   - [ErrValidation] naming the violated rule.
//   - [ErrDuplicateIdentity] if the username or email is already taken.
//   - [ErrStorageUnavailable] on store I/O failure.
func (a *authService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := validateUsername(in.Username); err != nil {
		return models.User{}, err
	}
	if err := validateEmail(in.Email); err != nil {
		return models.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	if err := validateLevel(in.Level); err != nil {
		return models.User{}, err
	}

	hash, err := utils.HashPassword(in.Password, a.cfg.BcryptCost)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	created, err := a.users.CreateUser(ctx, models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Level:        in.Level,
	})
	if err != nil {
		if errors.Is(err, store.ErrIdentityAlreadyExists) {
			return models.User{}, ErrDuplicateIdentity
		}

		log.Err(err).Str("username", in.Username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := a.audit.Record(ctx, models.AuditEvent{
		UserID:    created.UserID,
		Action:    models.AuditRegister,
		ClientIP:  in.Client.IP,
		UserAgent: in.Client.UserAgent,
		Success:   true,
	}); err != nil {
		return models.User{}, err
	}

	return created.Public(), nil
}

// Login authenticates a user with a password and, when 2FA is enabled, a
// TOTP code. Exactly one audit event is appended per attempt, with the
// success flag matching the outcome.
//
// The checks run in a fixed order:
//  1. In-memory rate limiter lockout, before any credential store access.
//  2. Active user lookup; an unknown username fails exactly like a wrong
//     password and counts against the limiter, so nonexistent accounts
//     cannot be distinguished by probing.
//  3. Persisted lockout on the user row (survives process restarts).
//  4. Password verification; a mismatch increments both the in-memory and
//     the persisted failure counters, locking the account at the threshold.
//  5. TOTP verification within the ±2-step drift window when enabled.
//  6. On success: failure state cleared, last login stamped, session issued.
func (a *authService) Login(ctx context.Context, in LoginInput) (models.LoginResult, error) {
	log := logger.FromContext(ctx)
	now := a.now()

	// step 1: in-memory lockout check, no store access
	if a.limiter.IsLocked(in.Username) {
		if err := a.auditLoginFailure(ctx, 0, in.Client, "account locked"); err != nil {
			return models.LoginResult{}, err
		}
		return models.LoginResult{}, ErrAccountLocked
	}

	user, err := a.users.FindUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// unknown usernames accumulate limiter failures like real ones
			a.limiter.RecordFailure(in.Username)
			if err := a.auditLoginFailure(ctx, 0, in.Client, "unknown username"); err != nil {
				return models.LoginResult{}, err
			}
			return models.LoginResult{}, ErrInvalidCredentials
		}

		log.Err(err).Msg("user lookup failed")
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// step 3: persisted lockout is the durable source of truth
	if user.IsLocked(now) {
		a.limiter.Lock(in.Username, user.LockedUntil)
		if err := a.auditLoginFailure(ctx, user.UserID, in.Client, "account locked"); err != nil {
			return models.LoginResult{}, err
		}
		return models.LoginResult{}, ErrAccountLocked
	}

	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		if err := a.registerFailedAttempt(ctx, user, now); err != nil {
			return models.LoginResult{}, err
		}
		if err := a.auditLoginFailure(ctx, user.UserID, in.Client, "wrong password"); err != nil {
			return models.LoginResult{}, err
		}
		return models.LoginResult{}, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if in.TwoFactorCode == "" {
			if err := a.auditLoginFailure(ctx, user.UserID, in.Client, "two-factor code missing"); err != nil {
				return models.LoginResult{}, err
			}
			return models.LoginResult{}, ErrTwoFactorRequired
		}

		if !utils.ValidateTOTPCode(in.TwoFactorCode, user.TwoFactorSecret, now) {
			a.limiter.RecordFailure(in.Username)
			if err := a.audit.Record(ctx, models.AuditEvent{
				UserID:    user.UserID,
				Action:    models.AuditTwoFactorFailed,
				ClientIP:  in.Client.IP,
				UserAgent: in.Client.UserAgent,
				Success:   false,
			}); err != nil {
				return models.LoginResult{}, err
			}
			return models.LoginResult{}, ErrInvalidTwoFactorCode
		}
	}

	// step 6: full success
	a.limiter.Clear(in.Username)
	if err := a.users.ResetFailedAttempts(ctx, user.UserID); err != nil {
		log.Err(err).Msg("resetting failed attempts failed")
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := a.users.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		log.Err(err).Msg("stamping last login failed")
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	session, err := a.createSession(ctx, user, in.Client, now)
	if err != nil {
		return models.LoginResult{}, err
	}

	if err := a.audit.Record(ctx, models.AuditEvent{
		UserID:    user.UserID,
		Action:    models.AuditLoginSuccess,
		ClientIP:  in.Client.IP,
		UserAgent: in.Client.UserAgent,
		Success:   true,
	}); err != nil {
		return models.LoginResult{}, err
	}

	user.LastLoginAt = now

	return models.LoginResult{
		Token:        session.Token,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
		User:         user.Public(),
	}, nil
}

// Authenticate resolves a bearer token to its active, unexpired session.
// The in-memory cache is consulted first; a miss falls through to the
// persistent store and repopulates the cache on success.
//
// Returns [ErrInvalidSession] for unknown, inactive, or expired tokens.
func (a *authService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	log := logger.FromContext(ctx)
	now := a.now()

	if cached, ok := a.cache.Get(token); ok {
		if cached.Expired(now) || !cached.Active {
			a.cache.Delete(token)
			return models.Session{}, ErrInvalidSession
		}
		return cached, nil
	}

	session, err := a.sessions.FindActiveSession(ctx, token, now)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return models.Session{}, ErrInvalidSession
		}

		log.Err(err).Msg("session lookup failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	a.cache.Put(session)

	return session, nil
}

// CheckPermission resolves the session and authorizes it against the named
// action, touching last-activity on success.
//
// Returns the refreshed session or:
//   - [ErrInvalidSession] if the token resolves to no live session.
//   - [ErrUnknownAction] if the action is not registered.
//   - [ErrInsufficientPermission] (with a denial audit event) if the
//     session's level is not in the action's authorized set.
func (a *authService) CheckPermission(ctx context.Context, token, action string) (models.Session, error) {
	log := logger.FromContext(ctx)

	session, err := a.Authenticate(ctx, token)
	if err != nil {
		return models.Session{}, err
	}

	allowed, err := a.permissions.IsAuthorized(session.Level, action)
	if err != nil {
		return models.Session{}, err
	}
	if !allowed {
		if err := a.audit.Record(ctx, models.AuditEvent{
			UserID:    session.UserID,
			Action:    models.AuditPermissionDenied,
			Resource:  action,
			ClientIP:  session.ClientIP,
			UserAgent: session.UserAgent,
			Success:   false,
		}); err != nil {
			return models.Session{}, err
		}
		return models.Session{}, ErrInsufficientPermission
	}

	now := a.now()
	if err := a.sessions.TouchSession(ctx, token, now); err != nil {
		log.Err(err).Msg("touching session failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	session.LastActivityAt = now
	a.cache.Put(session)

	return session, nil
}

// Logout invalidates the session unconditionally. Idempotent: logging out
// an unknown or already-invalidated token is not an error.
func (a *authService) Logout(ctx context.Context, token string, client models.ClientInfo) error {
	log := logger.FromContext(ctx)

	session, known := a.cache.Get(token)
	if !known {
		if found, err := a.sessions.FindActiveSession(ctx, token, a.now()); err == nil {
			session, known = found, true
		}
	}

	a.cache.Delete(token)

	if err := a.sessions.InvalidateSession(ctx, token); err != nil {
		log.Err(err).Msg("invalidating session failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if known {
		return a.audit.Record(ctx, models.AuditEvent{
			UserID:    session.UserID,
			Action:    models.AuditLogout,
			ClientIP:  client.IP,
			UserAgent: client.UserAgent,
			Success:   true,
		})
	}

	return nil
}

// SetupTwoFactor generates a fresh TOTP secret for the user and persists it
// in the pending state. 2FA stays disabled until [AuthService.VerifyTwoFactor]
// succeeds once, so an unconfirmed secret can never lock the user out.
func (a *authService) SetupTwoFactor(ctx context.Context, userID int64) (models.TwoFactorSetup, error) {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.TwoFactorSetup{}, validationError("unknown user")
		}

		log.Err(err).Msg("user lookup failed")
		return models.TwoFactorSetup{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	secret, enrollmentURL, err := utils.GenerateTOTPSecret(a.cfg.TOTPIssuer, user.Email)
	if err != nil {
		log.Err(err).Msg("TOTP secret generation failed")
		return models.TwoFactorSetup{}, err
	}

	if err := a.users.SetTwoFactorSecret(ctx, userID, secret); err != nil {
		log.Err(err).Msg("persisting TOTP secret failed")
		return models.TwoFactorSetup{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := a.audit.Record(ctx, models.AuditEvent{
		UserID:  userID,
		Action:  models.AuditTwoFactorSetup,
		Success: true,
	}); err != nil {
		return models.TwoFactorSetup{}, err
	}

	return models.TwoFactorSetup{
		Secret:        secret,
		EnrollmentURL: enrollmentURL,
	}, nil
}

// VerifyTwoFactor validates the code against the pending secret with the
// standard drift window. On success it flips the enabled flag and logs the
// event; on failure it returns [ErrInvalidTwoFactorCode] without mutating
// any state.
func (a *authService) VerifyTwoFactor(ctx context.Context, userID int64, code string) error {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return validationError("unknown user")
		}

		log.Err(err).Msg("user lookup failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if user.TwoFactorSecret == "" {
		return validationError("two-factor setup has not been started")
	}

	if !utils.ValidateTOTPCode(code, user.TwoFactorSecret, a.now()) {
		return ErrInvalidTwoFactorCode
	}

	if err := a.users.EnableTwoFactor(ctx, userID); err != nil {
		log.Err(err).Msg("enabling two-factor failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return a.audit.Record(ctx, models.AuditEvent{
		UserID:  userID,
		Action:  models.AuditTwoFactorEnabled,
		Success: true,
	})
}

// RequestPasswordReset issues a single-use reset token for the account
// registered under email. The caller is responsible for delivering the
// token out of band and for masking unknown-email failures from clients.
func (a *authService) RequestPasswordReset(ctx context.Context, email string, client models.ClientInfo) (models.PasswordResetToken, error) {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.PasswordResetToken{}, validationError("unknown email")
		}

		log.Err(err).Msg("user lookup failed")
		return models.PasswordResetToken{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	value, err := utils.GenerateToken()
	if err != nil {
		log.Err(err).Msg("reset token generation failed")
		return models.PasswordResetToken{}, err
	}

	now := a.now()
	token, err := a.resetTokens.CreateResetToken(ctx, models.PasswordResetToken{
		UserID:    user.UserID,
		Token:     value,
		ExpiresAt: now.Add(a.cfg.ResetTokenLifetime),
		CreatedAt: now,
	})
	if err != nil {
		log.Err(err).Msg("persisting reset token failed")
		return models.PasswordResetToken{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return token, nil
}

// ResetPassword redeems a reset token: validates the new password, replaces
// the stored hash, consumes the token, clears lockout state, and revokes
// every session of the user.
//
// Returns [ErrInvalidResetToken] for unknown, used, or expired tokens.
func (a *authService) ResetPassword(ctx context.Context, token, newPassword string, client models.ClientInfo) error {
	log := logger.FromContext(ctx)

	found, err := a.resetTokens.FindResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}

		log.Err(err).Msg("reset token lookup failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if !found.Usable(a.now()) {
		return ErrInvalidResetToken
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword, a.cfg.BcryptCost)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := a.users.UpdatePassword(ctx, found.UserID, hash); err != nil {
		log.Err(err).Msg("updating password failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := a.resetTokens.MarkResetTokenUsed(ctx, found.TokenID); err != nil {
		log.Err(err).Msg("consuming reset token failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if err := a.users.ResetFailedAttempts(ctx, found.UserID); err != nil {
		log.Err(err).Msg("resetting failed attempts failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// a changed password revokes every outstanding session
	if err := a.sessions.InvalidateUserSessions(ctx, found.UserID); err != nil {
		log.Err(err).Msg("revoking user sessions failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	a.cache.DeleteUser(found.UserID)

	if user, err := a.users.FindUserByID(ctx, found.UserID); err == nil {
		a.limiter.Clear(user.Username)
	}

	return a.audit.Record(ctx, models.AuditEvent{
		UserID:    found.UserID,
		Action:    models.AuditPasswordReset,
		ClientIP:  client.IP,
		UserAgent: client.UserAgent,
		Success:   true,
	})
}

// Bootstrap creates the default super-admin account on first run if no
// active super-admin exists. Idempotent: a concurrent or repeated bootstrap
// that loses the uniqueness race is treated as success.
func (a *authService) Bootstrap(ctx context.Context) error {
	log := logger.FromContext(ctx)

	count, err := a.users.CountActiveByLevel(ctx, models.LevelSuperAdmin)
	if err != nil {
		log.Err(err).Msg("bootstrap super-admin check failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(BootstrapPassword, a.cfg.BcryptCost)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return fmt.Errorf("error hashing password: %w", err)
	}

	created, err := a.users.CreateUser(ctx, models.User{
		Username:     BootstrapUsername,
		Email:        BootstrapEmail,
		PasswordHash: hash,
		Level:        models.LevelSuperAdmin,
	})
	if err != nil {
		if errors.Is(err, store.ErrIdentityAlreadyExists) {
			return nil
		}

		log.Err(err).Msg("bootstrap user creation failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	a.logger.Warn().
		Str("username", BootstrapUsername).
		Msg("SECURITY: default super-admin account created with a well-known password, rotate the credentials immediately")

	return a.audit.Record(ctx, models.AuditEvent{
		UserID:  created.UserID,
		Action:  models.AuditBootstrap,
		Details: "default super-admin created",
		Success: true,
	})
}

// createSession issues a fresh token pair and persists the session, putting
// a copy in the cache. If persistence fails after the counters were already
// reset, the login fails with a retryable fault and no session exists.
func (a *authService) createSession(ctx context.Context, user models.User, client models.ClientInfo, now time.Time) (models.Session, error) {
	log := logger.FromContext(ctx)

	token, err := utils.GenerateToken()
	if err != nil {
		log.Err(err).Msg("session token generation failed")
		return models.Session{}, err
	}
	refreshToken, err := utils.GenerateToken()
	if err != nil {
		log.Err(err).Msg("refresh token generation failed")
		return models.Session{}, err
	}

	session, err := a.sessions.CreateSession(ctx, models.Session{
		UserID:         user.UserID,
		Token:          token,
		RefreshToken:   refreshToken,
		Level:          user.Level,
		ClientIP:       client.IP,
		UserAgent:      client.UserAgent,
		CreatedAt:      now,
		ExpiresAt:      now.Add(a.cfg.SessionLifetime),
		LastActivityAt: now,
	})
	if err != nil {
		log.Err(err).Msg("persisting session failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	a.cache.Put(session)

	return session, nil
}

// registerFailedAttempt records a wrong-password failure on both lockout
// trackers: the in-memory limiter and the persisted counter. The persisted
// counter decides the lockout, so the threshold survives restarts.
func (a *authService) registerFailedAttempt(ctx context.Context, user models.User, now time.Time) error {
	log := logger.FromContext(ctx)

	a.limiter.RecordFailure(user.Username)

	if err := a.users.IncrementFailedAttempts(ctx, user.UserID); err != nil {
		log.Err(err).Msg("incrementing failed attempts failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if user.FailedAttempts+1 >= a.cfg.LockoutThreshold {
		until := now.Add(a.cfg.LockoutDuration)
		if err := a.users.SetLockout(ctx, user.UserID, until); err != nil {
			log.Err(err).Msg("persisting lockout failed")
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		a.limiter.Lock(user.Username, until)
	}

	return nil
}

// auditLoginFailure appends the single failed-login event for this attempt.
func (a *authService) auditLoginFailure(ctx context.Context, userID int64, client models.ClientInfo, details string) error {
	return a.audit.Record(ctx, models.AuditEvent{
		UserID:    userID,
		Action:    models.AuditLoginFailed,
		Details:   details,
		ClientIP:  client.IP,
		UserAgent: client.UserAgent,
		Success:   false,
	})
}
