package store

import (
	"github.com/tvsaude/auth-service/internal/logger"
)

// Storages aggregates all repositories backed by the shared database
// connection. It is the single persistence entry point handed to the
// service layer.
type Storages struct {
	UserRepository       UserRepository
	SessionRepository    SessionRepository
	AuditRepository      AuditRepository
	ResetTokenRepository ResetTokenRepository
}

// NewStorages wires every repository to the shared connection.
func NewStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		UserRepository:       NewUserRepository(db, logger),
		SessionRepository:    NewSessionRepository(db, logger),
		AuditRepository:      NewAuditRepository(db, logger),
		ResetTokenRepository: NewResetTokenRepository(db, logger),
	}
}
