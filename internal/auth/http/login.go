package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/authsdk"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// LoginHandler serves POST /auth/login and POST /auth/login-with-2fa.
type LoginHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Description	Authenticates an account. When two-factor authentication is enabled the response is a challenge
//	@Description	(two_factor_required=true) and no tokens are issued; complete the login via /auth/login-with-2fa.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest				true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse				"Session, or a two-factor challenge"
//	@Failure		400		{object}	authsdk.ErrorResponse				"Invalid credentials"
//	@Failure		403		{object}	authsdk.ErrorResponse				"Account disabled"
//	@Failure		404		{object}	authsdk.ErrorResponse				"Unknown email"
//	@Failure		500		{object}	authsdk.ErrorResponse				"error, error_description"
//	@Router			/auth/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	pair, user, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorRequired) {
			httpx.NoCache(w)
			httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorChallengeResponse{TwoFactorRequired: true})
			return
		}
		writeServiceError(w, log, err)
		return
	}

	writeSession(w, http.StatusOK, pair, user)
}

// HandleLoginWith2FA godoc
//
//	@Summary		Complete a two-factor login
//	@Description	Authenticates with email, password and a one-time code. A current TOTP code is accepted, or
//	@Description	failing that an unused backup code, which is consumed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorLoginRequest	true	"Credentials and code"
//	@Success		200		{object}	authsdk.TokenResponse			"access_token, refresh_token, token_type, expires_in, user"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Invalid credentials"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid one-time code"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Account disabled"
//	@Failure		404		{object}	authsdk.ErrorResponse			"Unknown email"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/auth/login-with-2fa [post].
func (h *LoginHandler) HandleLoginWith2FA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.TwoFactorLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if req.Email == "" || req.Password == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email, password and code are required")
		return
	}

	pair, user, err := h.AuthService.LoginWithTwoFactor(ctx, req.Email, req.Password, req.Code)
	if err != nil {
		// A wrong code on the login challenge is an authentication failure,
		// unlike /auth/2fa/verify where it is a bad request.
		if errors.Is(err, service.ErrInvalidTwoFactorCode) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_two_factor_code", "The one-time code is incorrect")
			return
		}
		writeServiceError(w, log, err)
		return
	}

	writeSession(w, http.StatusOK, pair, user)
}
