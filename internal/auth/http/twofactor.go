package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/authsdk"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// TwoFactorHandler serves the /auth/2fa endpoints.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleSetup godoc
//
//	@Summary		Begin two-factor enrollment
//	@Description	Generates a pending TOTP secret and a fresh set of backup codes. The secret and codes are
//	@Description	returned exactly once; 2FA stays off until a code is verified via /auth/2fa/verify.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorSetupResponse	"secret, otpauth_url, backup_codes"
//	@Failure		400	{object}	authsdk.ErrorResponse			"Already enabled"
//	@Failure		403	{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/auth/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Authentication required")
		return
	}

	setup, err := h.TwoFactorService.Setup(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorSetupResponse{
		Secret:      setup.Secret,
		OTPAuthURL:  setup.OTPAuthURL,
		Issuer:      setup.Issuer,
		Account:     setup.Account,
		BackupCodes: setup.BackupCodes,
	})
}

// HandleVerify godoc
//
//	@Summary		Activate two-factor authentication
//	@Description	Verifies a TOTP code against the pending secret and enables 2FA for the account.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		204		"Two-factor authentication enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid code, not enrolled, or already enabled"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.TwoFactorService.Activate)
}

// HandleDisable godoc
//
//	@Summary		Disable two-factor authentication
//	@Description	Verifies a current TOTP code, then removes the secret and all remaining backup codes.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		204		"Two-factor authentication disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid code or not enabled"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.withCode(w, r, h.TwoFactorService.Disable)
}

func (h *TwoFactorHandler) withCode(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, code string) error) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Authentication required")
		return
	}

	var req authsdk.TwoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeInvalidBody(w)
		return
	}

	if err := fn(ctx, userID, req.Code); err != nil {
		writeServiceError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
