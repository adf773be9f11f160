package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/models"
)

// resetTokenRepository is the SQLite-backed implementation of
// [ResetTokenRepository].
type resetTokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewResetTokenRepository constructs a [ResetTokenRepository] backed by the
// provided database connection and logger.
func NewResetTokenRepository(db *DB, logger *logger.Logger) ResetTokenRepository {
	logger.Debug().Msg("creating reset token repository")
	return &resetTokenRepository{
		db:     db,
		logger: logger,
	}
}

// CreateResetToken persists a new single-use token and returns it with the
// server-assigned TokenID.
func (r *resetTokenRepository) CreateResetToken(ctx context.Context, token models.PasswordResetToken) (models.PasswordResetToken, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createResetToken,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err := row.Scan(&token.TokenID); err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.CreateResetToken").Msg("error: inserting reset token failed")
		return models.PasswordResetToken{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return token, nil
}

// FindResetToken retrieves a reset token by its value, used or not.
// The caller decides whether the token is still redeemable.
func (r *resetTokenRepository) FindResetToken(ctx context.Context, token string) (models.PasswordResetToken, error) {
	log := logger.FromContext(ctx)

	var found models.PasswordResetToken
	row := r.db.QueryRowContext(ctx, findResetToken, token)
	err := row.Scan(
		&found.TokenID,
		&found.UserID,
		&found.Token,
		&found.Used,
		&found.ExpiresAt,
		&found.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PasswordResetToken{}, ErrResetTokenNotFound
		}

		log.Err(err).Str("func", "*resetTokenRepository.FindResetToken").Msg("error: scanning error")
		return models.PasswordResetToken{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}

// MarkResetTokenUsed consumes the token so it cannot be redeemed twice.
func (r *resetTokenRepository) MarkResetTokenUsed(ctx context.Context, tokenID int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, markResetTokenUsed, tokenID)
	if err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.MarkResetTokenUsed").Msg("error: executing statement")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*resetTokenRepository.MarkResetTokenUsed").Msg("error: reading affected rows")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrResetTokenNotFound
	}

	return nil
}
