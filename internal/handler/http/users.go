package http

import (
	"encoding/json"
	"net/http"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/service"
	"github.com/tvsaude/auth-service/internal/utils"
	"github.com/tvsaude/auth-service/models"
)

type registerRequest struct {
	Username string                 `json:"username"`
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Level    models.PermissionLevel `json:"level"`
}

// register creates a new user account. The route is gated by the
// "users:manage" action, so only admin-class sessions reach this handler.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	user, err := h.services.AuthService.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Level:    req.Level,
		Client:   clientInfo(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().Int64("id", user.UserID).Str("level", user.Level.String()).Msg("user registered")

	utils.WriteJSON(w, user, http.StatusCreated)
}
