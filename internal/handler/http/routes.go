package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authentication
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/password-reset", h.requestPasswordReset)
		r.Post("/api/auth/password-reset/confirm", h.confirmPasswordReset)
	})

	// routes requiring a valid session
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/auth/me", h.me)
		r.Post("/api/auth/2fa/setup", h.setupTwoFactor)
		r.Post("/api/auth/2fa/verify", h.verifyTwoFactor)
	})

	// routes additionally gated by a permission action
	router.Group(func(r chi.Router) {
		r.Use(h.requirePermission("users:manage"))
		r.Post("/api/users", h.register)
	})
	router.Group(func(r chi.Router) {
		r.Use(h.requirePermission("audit:view"))
		r.Get("/api/audit", h.listAuditEvents)
	})

	return router
}
