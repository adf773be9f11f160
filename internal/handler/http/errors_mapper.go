package http

import (
	"errors"
	"net/http"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/service"
)

var errorStatusMap = map[error]int{
	service.ErrValidation:        http.StatusBadRequest,
	service.ErrDuplicateIdentity: http.StatusConflict,

	service.ErrInvalidCredentials:   http.StatusUnauthorized,
	service.ErrTwoFactorRequired:    http.StatusUnauthorized,
	service.ErrInvalidTwoFactorCode: http.StatusUnauthorized,
	service.ErrInvalidSession:       http.StatusUnauthorized,
	service.ErrInvalidResetToken:    http.StatusUnauthorized,

	service.ErrAccountLocked: http.StatusTooManyRequests,

	service.ErrInsufficientPermission: http.StatusForbidden,

	// an unregistered action wired to a route is a deployment defect,
	// not a client error
	service.ErrUnknownAction: http.StatusInternalServerError,

	service.ErrStorageUnavailable: http.StatusServiceUnavailable,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError returns the client-facing error text. Validation errors
// carry the violated rule; everything else is reduced to the sentinel's
// message so internals never leak. Unmapped errors degrade to the generic
// status text.
func messageFromError(err error) string {
	if errors.Is(err, service.ErrValidation) {
		return err.Error()
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return http.StatusText(http.StatusInternalServerError)
}

// writeError logs the full error and responds with its mapped status and
// sanitized message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Msg("request failed")
	} else {
		log.Debug().Err(err).Msg("request rejected")
	}

	http.Error(w, messageFromError(err), status)
}
