package http

import (
	"context"
	"net/http"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/utils"
)

// auth is an HTTP middleware that enforces session-token authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer
// token, resolves it via [service.AuthService.Authenticate], and — on
// success — stores the resolved session in the request context under
// [utils.SessionCtxKey] before delegating to the next handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized when:
//   - the "Authorization" header is absent ([ErrEmptyAuthorizationHeader]);
//   - the header value cannot be parsed as a bearer token
//     ([ErrInvalidAuthorizationHeader]);
//   - the token resolves to no active, unexpired session.
func (h *Handler) auth(next http.Handler) http.Handler {
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
		session, err := h.services.AuthService.Authenticate(ctx, token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// Store the resolved session in the context so downstream handlers
		// can read the acting user and level without a second lookup.
		ctx = context.WithValue(ctx, utils.SessionCtxKey, session)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
