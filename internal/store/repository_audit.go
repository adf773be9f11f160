package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/models"
)

// defaultAuditLimit caps unbounded audit queries.
const defaultAuditLimit = 100

// auditRepository is the SQLite-backed implementation of [AuditRepository].
// The table is append-only: the core never updates or deletes event rows.
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] backed by the provided
// database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// AppendEvent persists a new audit event and returns it with the
// server-assigned EventID. A zero UserID is stored as NULL so that events
// against unknown usernames remain unattributed.
func (r *auditRepository) AppendEvent(ctx context.Context, event models.AuditEvent) (models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	userID := sql.NullInt64{Int64: event.UserID, Valid: event.UserID != 0}

	row := r.db.QueryRowContext(ctx, appendAuditEvent,
		userID,
		event.Action,
		event.Resource,
		event.Details,
		event.ClientIP,
		event.UserAgent,
		event.Success,
		event.CreatedAt,
	)

	if err := row.Scan(&event.EventID); err != nil {
		log.Err(err).Str("func", "*auditRepository.AppendEvent").Msg("error: inserting audit event failed")
		return models.AuditEvent{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return event, nil
}

// ListEvents returns audit history matching the filter, newest first.
// Zero-valued filter fields are not applied; a zero limit falls back to
// [defaultAuditLimit].
func (r *auditRepository) ListEvents(ctx context.Context, filter models.AuditFilter) ([]models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListEventsQuery(filter)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.ListEvents").Msg("error: building query")
		return nil, fmt.Errorf("error building sql query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.ListEvents").Msg("error: executing query")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var (
			event  models.AuditEvent
			userID sql.NullInt64
		)

		err := rows.Scan(
			&event.EventID,
			&userID,
			&event.Action,
			&event.Resource,
			&event.Details,
			&event.ClientIP,
			&event.UserAgent,
			&event.Success,
			&event.CreatedAt,
		)
		if err != nil {
			log.Err(err).Str("func", "*auditRepository.ListEvents").Msg("error: scanning rows")
			return nil, fmt.Errorf("unexpected DB error: %w", err)
		}

		if userID.Valid {
			event.UserID = userID.Int64
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*auditRepository.ListEvents").Msg("error: iterating rows")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return events, nil
}

// buildListEventsQuery assembles the filtered audit SELECT with squirrel.
func buildListEventsQuery(filter models.AuditFilter) (string, []any, error) {
	builder := sq.Select(
		"event_id",
		"user_id",
		"action",
		"resource",
		"details",
		"client_ip",
		"user_agent",
		"success",
		"created_at",
	).From("audit_events")

	if filter.UserID != 0 {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Action != "" {
		builder = builder.Where(sq.Eq{"action": filter.Action})
	}
	if filter.Success != nil {
		builder = builder.Where(sq.Eq{"success": *filter.Success})
	}
	if !filter.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": filter.From})
	}
	if !filter.To.IsZero() {
		builder = builder.Where(sq.Lt{"created_at": filter.To})
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultAuditLimit
	}

	return builder.
		OrderBy("created_at DESC", "event_id DESC").
		Limit(limit).
		ToSql()
}
