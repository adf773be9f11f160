package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/models"
)

// sessionRepository is the SQLite-backed implementation of
// [SessionRepository]. Sessions are invalidated by flipping the active flag,
// never deleted, so the audit trail of issued credentials survives logout.
type sessionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSessionRepository constructs a [SessionRepository] backed by the
// provided database connection and logger.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession persists a new session row. The caller supplies the token
// pair and all timestamps; the store assigns only the SessionID.
func (r *sessionRepository) CreateSession(ctx context.Context, session models.Session) (models.Session, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createSession,
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.Level,
		session.ClientIP,
		session.UserAgent,
		session.CreatedAt,
		session.ExpiresAt,
		session.LastActivityAt,
	)

	if err := row.Scan(&session.SessionID); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateSession").Msg("error: inserting session failed")
		return models.Session{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	session.Active = true

	return session, nil
}

// FindActiveSession retrieves the session with the given token if it is
// still active and unexpired at now. Returns [ErrSessionNotFound] otherwise.
func (r *sessionRepository) FindActiveSession(ctx context.Context, token string, now time.Time) (models.Session, error) {
	log := logger.FromContext(ctx)

	var session models.Session
	row := r.db.QueryRowContext(ctx, findActiveSession, token, now)
	err := row.Scan(
		&session.SessionID,
		&session.UserID,
		&session.Token,
		&session.RefreshToken,
		&session.Level,
		&session.ClientIP,
		&session.UserAgent,
		&session.Active,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LastActivityAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}

		log.Err(err).Str("func", "*sessionRepository.FindActiveSession").Msg("error: scanning error")
		return models.Session{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return session, nil
}

// TouchSession refreshes the last-activity timestamp of an active session.
// Touching a session that is gone or inactive is not an error.
func (r *sessionRepository) TouchSession(ctx context.Context, token string, at time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, touchSession, at, token); err != nil {
		log.Err(err).Str("func", "*sessionRepository.TouchSession").Msg("error: executing statement")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// InvalidateSession flips the active flag of the session with the given
// token. Idempotent: invalidating an unknown or already-inactive token
// succeeds silently.
func (r *sessionRepository) InvalidateSession(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, invalidateSession, token); err != nil {
		log.Err(err).Str("func", "*sessionRepository.InvalidateSession").Msg("error: executing statement")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// InvalidateUserSessions revokes every active session of the user. Called
// when a password reset succeeds.
func (r *sessionRepository) InvalidateUserSessions(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, invalidateUserSessions, userID); err != nil {
		log.Err(err).Str("func", "*sessionRepository.InvalidateUserSessions").Msg("error: executing statement")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// ExpireSessions flips every active session whose expiry has passed at now
// and returns the number of rows affected. Called by the background sweeper.
func (r *sessionRepository) ExpireSessions(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, expireSessions, now)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.ExpireSessions").Msg("error: executing statement")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.ExpireSessions").Msg("error: reading affected rows")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return affected, nil
}
