package http

import (
	"net/http"

	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// LogoutHandler serves POST /auth/logout and DELETE /auth/logout-all.
type LogoutHandler struct {
	TokenService *service.TokenService
}

// HandleLogout godoc
//
//	@Summary		Log out of the current session
//	@Description	Revokes the presented refresh token and clears the session cookies. Idempotent: revoking
//	@Description	an unknown token still succeeds.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.LogoutRequest	false	"Refresh token (or refresh_token cookie)"
//	@Success		204		"Session revoked"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/logout [post].
func (h *LogoutHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if refresh := refreshTokenFromRequest(r); refresh != "" {
		if err := h.TokenService.Revoke(ctx, refresh); err != nil {
			writeServiceError(w, log, err)
			return
		}
	}

	clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleLogoutAll godoc
//
//	@Summary		Log out everywhere
//	@Description	Revokes every refresh token the account holds. Outstanding access tokens stay valid until
//	@Description	they expire.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"All sessions revoked"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/logout-all [delete].
func (h *LogoutHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Authentication required")
		return
	}

	if err := h.TokenService.RevokeAll(ctx, userID); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("all sessions revoked", "user_id", userID)
	clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
