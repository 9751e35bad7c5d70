package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/inkcart/inkcart/internal/auth/oauth"
	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// GoogleHandler serves the Google sign-in flow: GET /auth/google starts the
// consent redirect, GET /auth/google/callback completes it.
type GoogleHandler struct {
	Provider      oauth.Provider
	LinkerService *service.LinkerService
}

// HandleRedirect godoc
//
//	@Summary		Start Google sign-in
//	@Description	Redirects the browser to the Google consent page. A state nonce is set as a short-lived
//	@Description	cookie and must round-trip unchanged through the callback.
//	@Tags			Auth
//	@Success		302	{string}	string					"Redirect to Google"
//	@Failure		500	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/google [get].
func (h *GoogleHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		slogx.FromContext(r.Context()).Error("state generation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Complete Google sign-in
//	@Description	Exchanges the authorization code, links or provisions the local account, and returns a session.
//	@Description	An account with the same verified email is linked rather than duplicated.
//	@Tags			Auth
//	@Produce		json
//	@Param			code	query		string					true	"Authorization code from Google"
//	@Param			state	query		string					true	"State nonce from the redirect"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, user"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing code or state mismatch"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Account disabled"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/google/callback [get].
func (h *GoogleHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// FormValue covers both the query string and a form_post body.
	code := r.FormValue("code")
	state := r.FormValue("state")
	if code == "" || state == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code and state are required")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != state {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_state", "State nonce is missing or does not match")
		return
	}

	// The nonce is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	identity, err := h.Provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrUnverifiedEmail) {
			httpx.WriteError(w, http.StatusBadRequest, "unverified_email",
				"The provider account email is not verified")
			return
		}
		log.Warn("provider exchange failed", "provider", h.Provider.Name(), "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Authorization code could not be exchanged")
		return
	}

	pair, user, err := h.LinkerService.Resolve(ctx, identity)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("provider sign-in", "provider", identity.Provider, "user_id", user.ID)
	writeSession(w, http.StatusOK, pair, user)
}
