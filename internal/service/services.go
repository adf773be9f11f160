package service

import (
	"github.com/tvsaude/auth-service/internal/config"
	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/store"
)

// Services aggregates the business-logic layer of the authentication core.
type Services struct {
	AuthService
	AuditService
}

// NewServices wires the service layer on top of the given storages.
// The session cache and rate limiter are shared between the services and
// the background workers, so they are injected rather than constructed here.
func NewServices(
	storages *store.Storages,
	cache *SessionCache,
	limiter *RateLimiter,
	cfg config.Auth,
	logger *logger.Logger,
) *Services {
	audit := NewAuditService(storages.AuditRepository, logger)

	return &Services{
		AuthService:  NewAuthService(storages, audit, cache, limiter, NewPermissionModel(), cfg, logger),
		AuditService: audit,
	}
}
