package http

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/internal/service"
	"github.com/tvsaude/auth-service/internal/utils"
	"github.com/tvsaude/auth-service/models"
)

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type verifyTwoFactorRequest struct {
	Code string `json:"code"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.AuthService.Login(ctx, service.LoginInput{
		Username:      req.Username,
		Password:      req.Password,
		TwoFactorCode: req.TwoFactorCode,
		Client:        clientInfo(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().Int64("id", result.User.UserID).Msg("user successfully logged in")

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	session, ok := utils.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.services.AuthService.Logout(ctx, session.Token, clientInfo(r)); err != nil {
		writeError(w, r, err)
		return
	}

	log.Debug().Int64("user_id", session.UserID).Msg("session invalidated")

	w.WriteHeader(http.StatusNoContent)
}

// me returns the resolved session of the calling token, giving clients a
// cheap way to validate a stored credential and read its level and expiry.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	session, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, session, http.StatusOK)
}

func (h *Handler) setupTwoFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := utils.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	setup, err := h.services.AuthService.SetupTwoFactor(ctx, session.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, setup, http.StatusOK)
}

func (h *Handler) verifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	session, ok := utils.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req verifyTwoFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.VerifyTwoFactor(ctx, session.UserID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requestPasswordReset issues a reset token for the given email. Unknown
// emails get the same 202 response as known ones, so the endpoint cannot be
// used to enumerate accounts.
//
// TODO: deliver reset tokens by email once an SMTP relay is provisioned for
// the dashboard, and stop returning them in the response body.
func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	token, err := h.services.AuthService.RequestPasswordReset(ctx, req.Email, clientInfo(r))
	if err != nil {
		if statusFromError(err) < http.StatusInternalServerError {
			// mask client-class failures: same response as success
			log.Debug().Err(err).Msg("password reset request rejected silently")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	}, http.StatusAccepted)
}

func (h *Handler) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req passwordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.ResetPassword(ctx, req.Token, req.NewPassword, clientInfo(r)); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clientInfo captures the request attribution passed down to the service
// layer for session records and audit events.
func clientInfo(r *http.Request) models.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	return models.ClientInfo{
		IP:        ip,
		UserAgent: r.UserAgent(),
	}
}
