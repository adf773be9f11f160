package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tvsaude/auth-service/internal/config"
	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/store"
	"github.com/tvsaude/auth-service/internal/utils"
	"github.com/tvsaude/auth-service/models"
)

var errDatabaseGone = errors.New("driver: bad connection")

// testStart is the simulated wall clock origin for every harness.
var testStart = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

const (
	testPassword  = "Correct#Horse1"
	wrongPassword = "Wrong#Horse1"
)

// authHarness wires an authService onto in-memory repositories with a
// manually advanced clock, so lockout windows, session lifetimes, and TOTP
// steps can be tested without sleeping.
type authHarness struct {
	users       *memUserRepository
	sessions    *memSessionRepository
	auditRepo   *memAuditRepository
	resetTokens *memResetTokenRepository
	cache       *SessionCache
	limiter     *RateLimiter
	auth        *authService
	clock       time.Time
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()

	cfg := config.Auth{
		SessionLifetime:    8 * time.Hour,
		LockoutThreshold:   5,
		LockoutDuration:    15 * time.Minute,
		BcryptCost:         bcrypt.MinCost,
		TOTPIssuer:         "TV Saude",
		ResetTokenLifetime: time.Hour,
	}

	h := &authHarness{
		users:       newMemUserRepository(),
		sessions:    newMemSessionRepository(),
		auditRepo:   newMemAuditRepository(),
		resetTokens: newMemResetTokenRepository(),
		cache:       NewSessionCache(),
		limiter:     NewRateLimiter(cfg.LockoutThreshold, cfg.LockoutDuration),
		clock:       testStart,
	}

	now := func() time.Time { return h.clock }
	h.limiter.now = now

	audit := NewAuditService(h.auditRepo, logger.Nop()).(*auditService)
	audit.now = now

	storages := &store.Storages{
		UserRepository:       h.users,
		SessionRepository:    h.sessions,
		AuditRepository:      h.auditRepo,
		ResetTokenRepository: h.resetTokens,
	}
	h.auth = NewAuthService(storages, audit, h.cache, h.limiter, NewPermissionModel(), cfg, logger.Nop()).(*authService)
	h.auth.now = now

	return h
}

func (h *authHarness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func (h *authHarness) register(t *testing.T, username string, level models.PermissionLevel) models.User {
	t.Helper()

	user, err := h.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@tvsaude.local",
		Password: testPassword,
		Level:    level,
	})
	require.NoError(t, err)

	return user
}

func (h *authHarness) login(username, password, code string) (models.LoginResult, error) {
	return h.auth.Login(context.Background(), LoginInput{
		Username:      username,
		Password:      password,
		TwoFactorCode: code,
		Client:        models.ClientInfo{IP: "10.0.0.7", UserAgent: "tvsaude-panel/2.1"},
	})
}

func TestRegister(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	user, err := h.auth.Register(ctx, RegisterInput{
		Username: "maria_silva",
		Email:    "maria@tvsaude.local",
		Password: testPassword,
		Level:    models.LevelOperator,
	})
	require.NoError(t, err)

	assert.NotZero(t, user.UserID)
	assert.Equal(t, "maria_silva", user.Username)
	assert.Equal(t, models.LevelOperator, user.Level)
	assert.Empty(t, user.PasswordHash, "credential material must not leave the service")
	assert.Empty(t, user.TwoFactorSecret)

	stored, err := h.users.FindUserByUsername(ctx, "maria_silva")
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, stored.PasswordHash, "password must be stored hashed")
	assert.True(t, utils.CheckPassword(stored.PasswordHash, testPassword))

	events := h.auditRepo.byAction(models.AuditRegister)
	require.Len(t, events, 1)
	assert.Equal(t, user.UserID, events[0].UserID)
	assert.True(t, events[0].Success)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()
	h.register(t, "maria_silva", models.LevelOperator)

	_, err := h.auth.Register(ctx, RegisterInput{
		Username: "maria_silva",
		Email:    "other@tvsaude.local",
		Password: testPassword,
		Level:    models.LevelViewer,
	})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = h.auth.Register(ctx, RegisterInput{
		Username: "other_name",
		Email:    "maria_silva@tvsaude.local",
		Password: testPassword,
		Level:    models.LevelViewer,
	})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestRegisterValidation(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@b.co", Password: testPassword, Level: models.LevelViewer}},
		{"username with space", RegisterInput{Username: "maria silva", Email: "a@b.co", Password: testPassword, Level: models.LevelViewer}},
		{"malformed email", RegisterInput{Username: "maria", Email: "not-an-email", Password: testPassword, Level: models.LevelViewer}},
		{"password without symbol", RegisterInput{Username: "maria", Email: "a@b.co", Password: "Password1", Level: models.LevelViewer}},
		{"password without upper", RegisterInput{Username: "maria", Email: "a@b.co", Password: "password#1", Level: models.LevelViewer}},
		{"password too short", RegisterInput{Username: "maria", Email: "a@b.co", Password: "Pw#1", Level: models.LevelViewer}},
		{"unknown level", RegisterInput{Username: "maria", Email: "a@b.co", Password: testPassword, Level: "root"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := h.auth.Register(ctx, test.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelAdmin)
	before := h.auditRepo.count()

	result, err := h.login("maria_silva", testPassword, "")
	require.NoError(t, err)

	assert.Len(t, result.Token, 64, "token must be 256 bits hex-encoded")
	assert.Len(t, result.RefreshToken, 64)
	assert.NotEqual(t, result.Token, result.RefreshToken)
	assert.Equal(t, h.clock.Add(8*time.Hour), result.ExpiresAt)
	assert.Equal(t, user.UserID, result.User.UserID)
	assert.Empty(t, result.User.PasswordHash)
	assert.Equal(t, h.clock, result.User.LastLoginAt)

	// exactly one audit event per attempt
	require.Equal(t, before+1, h.auditRepo.count())
	events := h.auditRepo.byAction(models.AuditLoginSuccess)
	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	assert.Equal(t, "10.0.0.7", events[0].ClientIP)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelViewer)
	before := h.auditRepo.count()

	_, err := h.login("maria_silva", wrongPassword, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.Equal(t, before+1, h.auditRepo.count())
	events := h.auditRepo.byAction(models.AuditLoginFailed)
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
	assert.Equal(t, user.UserID, events[0].UserID)

	stored, err := h.users.FindUserByID(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedAttempts)
}

func TestLoginUnknownUsernameIndistinguishable(t *testing.T) {
	h := newAuthHarness(t)

	_, err := h.login("no_such_user", testPassword, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown username must fail exactly like a wrong password")

	events := h.auditRepo.byAction(models.AuditLoginFailed)
	require.Len(t, events, 1)
	assert.Zero(t, events[0].UserID)

	// repeated probing of a nonexistent account locks out the same way
	for i := 0; i < 4; i++ {
		_, err = h.login("no_such_user", testPassword, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = h.login("no_such_user", testPassword, "")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginLockout(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelOperator)

	for i := 0; i < 5; i++ {
		_, err := h.login("maria_silva", wrongPassword, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// the sixth attempt fails as locked even with the correct password
	_, err := h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrAccountLocked)

	stored, err := h.users.FindUserByID(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FailedAttempts)
	assert.Equal(t, testStart.Add(15*time.Minute), stored.LockedUntil)

	// still locked one minute before expiry
	h.advance(14 * time.Minute)
	_, err = h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// lockout expired, correct password works and clears the counters
	h.advance(2 * time.Minute)
	_, err = h.login("maria_silva", testPassword, "")
	require.NoError(t, err)

	stored, err = h.users.FindUserByID(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedAttempts)
	assert.True(t, stored.LockedUntil.IsZero())
}

func TestLoginLockoutSurvivesRestart(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelOperator)

	require.NoError(t, h.users.SetLockout(context.Background(), user.UserID, h.clock.Add(10*time.Minute)))

	// fresh limiter simulates a restarted process with empty memory
	h.limiter = NewRateLimiter(5, 15*time.Minute)
	h.limiter.now = func() time.Time { return h.clock }
	h.auth.limiter = h.limiter

	_, err := h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrAccountLocked, "persisted lockout must hold after restart")

	// the limiter was rewarmed: the next attempt is refused without a lookup
	assert.True(t, h.limiter.IsLocked("maria_silva"))
}

func TestLoginTwoFactor(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelAdmin)
	secret := enableTwoFactor(t, h, user.UserID)

	// no code at all: challenge, not a credential failure
	_, err := h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrTwoFactorRequired)

	_, err = h.login("maria_silva", testPassword, "000000")
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	require.Len(t, h.auditRepo.byAction(models.AuditTwoFactorFailed), 1)

	code, err := utils.GenerateTOTPCode(secret, h.clock)
	require.NoError(t, err)
	_, err = h.login("maria_silva", testPassword, code)
	require.NoError(t, err)
}

func TestLoginTwoFactorDriftWindow(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelAdmin)
	secret := enableTwoFactor(t, h, user.UserID)

	// two steps behind is still inside the drift window
	stale, err := utils.GenerateTOTPCode(secret, h.clock.Add(-60*time.Second))
	require.NoError(t, err)
	_, err = h.login("maria_silva", testPassword, stale)
	require.NoError(t, err)

	// three steps behind is not
	tooStale, err := utils.GenerateTOTPCode(secret, h.clock.Add(-90*time.Second))
	require.NoError(t, err)
	_, err = h.login("maria_silva", testPassword, tooStale)
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)
}

func TestAuthenticateLifetime(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelViewer)

	result, err := h.login("maria_silva", testPassword, "")
	require.NoError(t, err)

	h.advance(7*time.Hour + 59*time.Minute)
	session, err := h.auth.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, models.LevelViewer, session.Level)

	h.advance(2 * time.Minute)
	_, err = h.auth.Authenticate(context.Background(), result.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	h := newAuthHarness(t)

	_, err := h.auth.Authenticate(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthenticateCacheFallthrough(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelViewer)

	result, err := h.login("maria_silva", testPassword, "")
	require.NoError(t, err)

	// cold cache: the persistent store is the source of truth
	h.cache.Delete(result.Token)
	session, err := h.auth.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)

	// and the hit repopulated the cache
	cached, ok := h.cache.Get(result.Token)
	require.True(t, ok)
	assert.Equal(t, session.SessionID, cached.SessionID)
}

func TestCheckPermission(t *testing.T) {
	h := newAuthHarness(t)
	viewer := h.register(t, "viewer_user", models.LevelViewer)

	result, err := h.login("viewer_user", testPassword, "")
	require.NoError(t, err)

	h.advance(5 * time.Minute)
	session, err := h.auth.CheckPermission(context.Background(), result.Token, "videos:view")
	require.NoError(t, err)
	assert.Equal(t, h.clock, session.LastActivityAt, "authorized request must touch activity")

	_, err = h.auth.CheckPermission(context.Background(), result.Token, "videos:delete")
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	denials := h.auditRepo.byAction(models.AuditPermissionDenied)
	require.Len(t, denials, 1)
	assert.Equal(t, viewer.UserID, denials[0].UserID)
	assert.Equal(t, "videos:delete", denials[0].Resource)
	assert.False(t, denials[0].Success)

	_, err = h.auth.CheckPermission(context.Background(), result.Token, "videos:transcode")
	assert.ErrorIs(t, err, ErrUnknownAction, "unregistered actions are refused, not defaulted")
}

func TestLogoutIdempotent(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelOperator)

	result, err := h.login("maria_silva", testPassword, "")
	require.NoError(t, err)
	client := models.ClientInfo{IP: "10.0.0.7"}

	require.NoError(t, h.auth.Logout(context.Background(), result.Token, client))

	_, err = h.auth.Authenticate(context.Background(), result.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// repeating the logout, or logging out garbage, is not an error
	require.NoError(t, h.auth.Logout(context.Background(), result.Token, client))
	require.NoError(t, h.auth.Logout(context.Background(), "no-such-token", client))

	assert.Len(t, h.auditRepo.byAction(models.AuditLogout), 1)
}

func TestTwoFactorEnrollment(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelAdmin)
	ctx := context.Background()

	setup, err := h.auth.SetupTwoFactor(ctx, user.UserID)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.True(t, strings.HasPrefix(setup.EnrollmentURL, "otpauth://totp/"))
	assert.Contains(t, setup.EnrollmentURL, "TV%20Saude")

	// pending secret must not lock the user out
	_, err = h.login("maria_silva", testPassword, "")
	require.NoError(t, err, "login must not require 2FA before confirmation")

	err = h.auth.VerifyTwoFactor(ctx, user.UserID, "000000")
	assert.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	stored, err := h.users.FindUserByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)

	code, err := utils.GenerateTOTPCode(setup.Secret, h.clock)
	require.NoError(t, err)
	require.NoError(t, h.auth.VerifyTwoFactor(ctx, user.UserID, code))

	stored, err = h.users.FindUserByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled)

	_, err = h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrTwoFactorRequired, "confirmed 2FA must gate login")
}

func TestPasswordReset(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t, "maria_silva", models.LevelOperator)
	ctx := context.Background()
	client := models.ClientInfo{IP: "10.0.0.7"}

	// a live session that must not survive the reset
	active, err := h.login("maria_silva", testPassword, "")
	require.NoError(t, err)

	token, err := h.auth.RequestPasswordReset(ctx, "maria_silva@tvsaude.local", client)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, token.UserID)
	assert.Equal(t, h.clock.Add(time.Hour), token.ExpiresAt)

	const newPassword = "Fresh#Horse2"
	require.NoError(t, h.auth.ResetPassword(ctx, token.Token, newPassword, client))

	_, err = h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "old password must stop working")
	_, err = h.login("maria_silva", newPassword, "")
	require.NoError(t, err)

	_, err = h.auth.Authenticate(ctx, active.Token)
	assert.ErrorIs(t, err, ErrInvalidSession, "reset must revoke outstanding sessions")

	// single use
	err = h.auth.ResetPassword(ctx, token.Token, "Another#Horse3", client)
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	require.Len(t, h.auditRepo.byAction(models.AuditPasswordReset), 1)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelOperator)
	ctx := context.Background()
	client := models.ClientInfo{}

	token, err := h.auth.RequestPasswordReset(ctx, "maria_silva@tvsaude.local", client)
	require.NoError(t, err)

	h.advance(61 * time.Minute)
	err = h.auth.ResetPassword(ctx, token.Token, "Fresh#Horse2", client)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetWeakReplacementRejected(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelOperator)
	ctx := context.Background()

	token, err := h.auth.RequestPasswordReset(ctx, "maria_silva@tvsaude.local", models.ClientInfo{})
	require.NoError(t, err)

	err = h.auth.ResetPassword(ctx, token.Token, "weak", models.ClientInfo{})
	assert.ErrorIs(t, err, ErrValidation)

	// the rejected attempt must not consume the token
	require.NoError(t, h.auth.ResetPassword(ctx, token.Token, "Fresh#Horse2", models.ClientInfo{}))
}

func TestBootstrap(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	require.NoError(t, h.auth.Bootstrap(ctx))

	count, err := h.users.CountActiveByLevel(ctx, models.LevelSuperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	created, err := h.users.FindUserByUsername(ctx, BootstrapUsername)
	require.NoError(t, err)
	assert.Equal(t, models.LevelSuperAdmin, created.Level)
	assert.True(t, utils.CheckPassword(created.PasswordHash, BootstrapPassword))

	require.Len(t, h.auditRepo.byAction(models.AuditBootstrap), 1)

	// idempotent: a second run creates nothing
	require.NoError(t, h.auth.Bootstrap(ctx))
	count, err = h.users.CountActiveByLevel(ctx, models.LevelSuperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Len(t, h.auditRepo.byAction(models.AuditBootstrap), 1)
}

func TestBootstrapSkippedWithExistingSuperAdmin(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "root_admin", models.LevelSuperAdmin)

	require.NoError(t, h.auth.Bootstrap(context.Background()))

	_, err := h.users.FindUserByUsername(context.Background(), BootstrapUsername)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestLoginStorageUnavailable(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelViewer)

	h.users.failAll = true
	_, err := h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestLoginFailsWhenAuditUnavailable(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t, "maria_silva", models.LevelViewer)

	h.auditRepo.failAll = true
	_, err := h.login("maria_silva", testPassword, "")
	assert.ErrorIs(t, err, ErrStorageUnavailable,
		"a login whose audit record cannot be persisted must not succeed")
}

// enableTwoFactor walks the full enrollment flow and returns the confirmed
// shared secret.
func enableTwoFactor(t *testing.T, h *authHarness, userID int64) string {
	t.Helper()

	setup, err := h.auth.SetupTwoFactor(context.Background(), userID)
	require.NoError(t, err)

	code, err := utils.GenerateTOTPCode(setup.Secret, h.clock)
	require.NoError(t, err)
	require.NoError(t, h.auth.VerifyTwoFactor(context.Background(), userID, code))

	return setup.Secret
}
