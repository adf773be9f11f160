package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/models"
)

// userRepository is the SQLite-backed implementation of [UserRepository].
// It handles account creation, lookup, and the targeted field mutations the
// auth service performs during the login and 2FA lifecycles.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt, UpdatedAt).
//
// Error handling:
//   - SQLite unique constraint violation → [ErrIdentityAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Username, user.Email, user.PasswordHash, user.Level)

	// scan server-assigned fields of the saved user
	if err := row.Scan(&user.UserID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: inserting user failed")

		switch sqliteErrorCode(err) {
		case sqlite3.ErrConstraintUnique:
			return models.User{}, ErrIdentityAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	user.Active = true

	return user, nil
}

// FindUserByUsername retrieves the active user record with the given
// username, or [ErrUserNotFound] if no such row exists.
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findUser(ctx, findUserByUsername, username)
}

// FindUserByEmail retrieves the active user record with the given email,
// or [ErrUserNotFound] if no such row exists.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findUser(ctx, findUserByEmail, email)
}

// FindUserByID retrieves the user record with the given ID regardless of its
// active flag, or [ErrUserNotFound] if no such row exists.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, findUserByID, userID)
}

func (r *userRepository) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	var (
		foundUser   models.User
		lockedUntil sql.NullTime
		lastLoginAt sql.NullTime
	)

	row := r.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(
		&foundUser.UserID,
		&foundUser.Username,
		&foundUser.Email,
		&foundUser.PasswordHash,
		&foundUser.Level,
		&foundUser.TwoFactorSecret,
		&foundUser.TwoFactorEnabled,
		&foundUser.FailedAttempts,
		&lockedUntil,
		&foundUser.Active,
		&lastLoginAt,
		&foundUser.CreatedAt,
		&foundUser.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}

		log.Err(err).Str("func", "*userRepository.findUser").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if lockedUntil.Valid {
		foundUser.LockedUntil = lockedUntil.Time
	}
	if lastLoginAt.Valid {
		foundUser.LastLoginAt = lastLoginAt.Time
	}

	return foundUser, nil
}

// UpdatePassword replaces the stored password hash of the user.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execTargeted(ctx, "*userRepository.UpdatePassword", updatePassword, passwordHash, userID)
}

// IncrementFailedAttempts adds one to the persisted failed-attempt counter.
func (r *userRepository) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	return r.execTargeted(ctx, "*userRepository.IncrementFailedAttempts", incrementFailedAttempts, userID)
}

// ResetFailedAttempts zeroes the failed-attempt counter and clears any
// lockout timestamp. Called on successful login and redeemed password reset.
func (r *userRepository) ResetFailedAttempts(ctx context.Context, userID int64) error {
	return r.execTargeted(ctx, "*userRepository.ResetFailedAttempts", resetFailedAttempts, userID)
}

// SetLockout records the instant until which login is refused for the user.
func (r *userRepository) SetLockout(ctx context.Context, userID int64, until time.Time) error {
	return r.execTargeted(ctx, "*userRepository.SetLockout", setLockout, until, userID)
}

// UpdateLastLogin stamps the most recent successful login.
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.execTargeted(ctx, "*userRepository.UpdateLastLogin", updateLastLogin, at, userID)
}

// SetTwoFactorSecret stores a pending TOTP secret and clears the enabled
// flag; the secret takes effect only after the first successful verification.
func (r *userRepository) SetTwoFactorSecret(ctx context.Context, userID int64, secret string) error {
	return r.execTargeted(ctx, "*userRepository.SetTwoFactorSecret", setTwoFactorSecret, secret, userID)
}

// EnableTwoFactor flips the 2FA enabled flag after a confirmed verification.
func (r *userRepository) EnableTwoFactor(ctx context.Context, userID int64) error {
	return r.execTargeted(ctx, "*userRepository.EnableTwoFactor", enableTwoFactor, userID)
}

// DeactivateUser soft-deletes the account by clearing its active flag.
func (r *userRepository) DeactivateUser(ctx context.Context, userID int64) error {
	return r.execTargeted(ctx, "*userRepository.DeactivateUser", deactivateUser, userID)
}

// CountActiveByLevel returns the number of active users holding the given
// permission level. Used by the first-run bootstrap check.
func (r *userRepository) CountActiveByLevel(ctx context.Context, level models.PermissionLevel) (int64, error) {
	log := logger.FromContext(ctx)

	var count int64
	if err := r.db.QueryRowContext(ctx, countActiveByLevel, level).Scan(&count); err != nil {
		log.Err(err).Str("func", "*userRepository.CountActiveByLevel").Msg("error: scanning error")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return count, nil
}

// execTargeted runs a single-row UPDATE against the users table and maps an
// empty match onto [ErrUserNotFound].
func (r *userRepository) execTargeted(ctx context.Context, funcName, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: executing statement")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: reading affected rows")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}
