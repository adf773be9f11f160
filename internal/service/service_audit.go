package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/store"
	"github.com/tvsaude/auth-service/models"
)

// auditService is the concrete implementation of [AuditService]. It stamps
// and persists events through the append-only audit repository and exposes
// the filtered read side consumed by reporting views.
type auditService struct {
	audit  store.AuditRepository
	logger *logger.Logger

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewAuditService constructs an [AuditService] over the given repository.
func NewAuditService(audit store.AuditRepository, logger *logger.Logger) AuditService {
	return &auditService{
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Record appends one event to the audit log, stamping CreatedAt if the
// caller left it zero. Storage failures surface as [ErrStorageUnavailable]:
// the log is a compliance record, so a write that cannot be persisted fails
// the operation that produced it.
func (s *auditService) Record(ctx context.Context, event models.AuditEvent) error {
	log := logger.FromContext(ctx)

	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}

	if _, err := s.audit.AppendEvent(ctx, event); err != nil {
		log.Err(err).Str("action", event.Action).Msg("appending audit event failed")
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return nil
}

// List returns audit history matching the filter, newest first.
func (s *auditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	events, err := s.audit.ListEvents(ctx, filter)
	if err != nil {
		log.Err(err).Msg("listing audit events failed")
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return events, nil
}
