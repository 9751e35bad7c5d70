package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/authsdk"
	"github.com/inkcart/inkcart/pkg/httpx"
)

// RefreshTokenCookie carries the opaque refresh token for browser clients.
// API clients may ignore it and send the token in the request body instead.
const RefreshTokenCookie = "refresh_token"

func tokenResponse(pair *domain.TokenPair, u domain.User) authsdk.TokenResponse {
	pub := u.Public()
	return authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		User: &authsdk.UserResponse{
			ID:            pub.ID,
			Email:         pub.Email,
			DisplayName:   pub.DisplayName,
			FirstName:     pub.FirstName,
			LastName:      pub.LastName,
			Role:          pub.Role.String(),
			EmailVerified: pub.EmailVerified,
			TwoFactor:     pub.TwoFactor,
			AvatarURL:     pub.AvatarURL,
			Locale:        pub.Locale,
			Timezone:      pub.Timezone,
			LastLoginAt:   pub.LastLoginAt,
			CreatedAt:     pub.CreatedAt,
		},
	}
}

// writeSession sets the browser session cookies and writes the token pair.
func writeSession(w http.ResponseWriter, status int, pair *domain.TokenPair, u domain.User) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.ExpiresIn.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/auth",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	httpx.NoCache(w)
	httpx.WriteJSON(w, status, tokenResponse(pair, u))
}

// clearSession expires both session cookies.
func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeServiceError maps expected-flow service errors onto their statuses.
// Anything unrecognized is logged and reported as a plain 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email_taken", "An account with this email already exists")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", "No such user")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_credentials", "Email or password is incorrect")
	case errors.Is(err, service.ErrInvalidTwoFactorCode):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_two_factor_code", "The one-time code is incorrect")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "The refresh token is invalid or expired")
	case errors.Is(err, service.ErrAccountDisabled):
		httpx.WriteError(w, http.StatusForbidden, "account_disabled", "This account has been disabled")
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "Unknown role")
	case errors.Is(err, service.ErrTwoFactorAlreadyEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "two_factor_already_enabled", "Two-factor authentication is already enabled")
	case errors.Is(err, service.ErrTwoFactorNotEnrolled):
		httpx.WriteError(w, http.StatusBadRequest, "two_factor_not_enrolled", "Two-factor authentication is not set up")
	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}

func writeInvalidBody(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
}
