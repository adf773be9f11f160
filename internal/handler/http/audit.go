package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/utils"
	"github.com/tvsaude/auth-service/models"
)

// listAuditEvents returns audit history filtered by the query parameters:
//
//	user_id — numeric account id
//	action  — exact action name, e.g. "auth.login_failed"
//	success — "true" or "false"
//	from/to — RFC 3339 timestamps bounding the event time
//	limit   — maximum number of events, capped by the repository default
//
// The route is gated by the "audit:view" action.
func (h *Handler) listAuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		log.Debug().Err(err).Msg("invalid audit filter")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.services.AuditService.List(ctx, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if events == nil {
		events = []models.AuditEvent{}
	}

	utils.WriteJSON(w, events, http.StatusOK)
}

func auditFilterFromQuery(r *http.Request) (models.AuditFilter, error) {
	query := r.URL.Query()
	var filter models.AuditFilter

	if raw := query.Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("user_id")
		}
		filter.UserID = userID
	}

	filter.Action = query.Get("action")

	if raw := query.Get("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("success")
		}
		filter.Success = &success
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("from")
		}
		filter.From = from
	}

	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("to")
		}
		filter.To = to
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}
