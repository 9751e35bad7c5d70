package http

import (
	"encoding/json"
	"net/http"

	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/authsdk"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// RefreshHandler serves POST /auth/refresh.
type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Rotate a refresh token
//	@Description	Exchanges a valid refresh token for a new access/refresh pair. The presented token is consumed
//	@Description	atomically; of two concurrent calls with the same token exactly one succeeds.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Refresh token (or refresh_token cookie)"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, user"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid, expired or already-used token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Account disabled"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refresh := refreshTokenFromRequest(r)
	if refresh == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "No refresh token presented")
		return
	}

	pair, user, err := h.TokenService.Rotate(ctx, refresh)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	writeSession(w, http.StatusOK, pair, user)
}

// refreshTokenFromRequest reads the refresh token from the JSON body, with
// the session cookie as fallback for browser clients.
func refreshTokenFromRequest(r *http.Request) string {
	var req authsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
