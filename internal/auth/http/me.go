package http

import (
	"net/http"

	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// MeHandler serves GET /auth/me.
type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Get the authenticated account
//	@Description	Returns the public profile of the account the access token belongs to.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"Account profile"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Failure		500	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Authentication required")
		return
	}

	user, err := h.AuthService.GetUserByID(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Public())
}
