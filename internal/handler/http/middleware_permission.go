package http

import (
	"context"
	"net/http"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/utils"
)

// requirePermission returns a middleware that authenticates the bearer
// token and authorizes the resolved session against the named action in one
// step via [service.AuthService.CheckPermission]. A denial is audited by the
// service layer and answered with HTTP 403; the session's last-activity
// timestamp is refreshed on success.
//
// The middleware subsumes auth: routes gated by it must not also be wrapped
// in the plain authentication middleware.
func (h *Handler) requirePermission(action string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Debug().Err(ErrEmptyAuthorizationHeader).Send()
				http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
				return
			}

			token, err := utils.ParseBearerToken(authHeader)
			if err != nil {
				log.Debug().Err(err).Send()
				http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			session, err := h.services.AuthService.CheckPermission(ctx, token, action)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx = context.WithValue(ctx, utils.SessionCtxKey, session)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
