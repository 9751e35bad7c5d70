package http

import (
	"encoding/json"
	"net/http"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/pkg/authsdk"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/slogx"
)

// RolesHandler serves PATCH /auth/users/{id}/role.
type RolesHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Change a user's role
//	@Description	Assigns one of the known roles (SUPER_ADMIN, ADMIN, MODERATOR, SELLER, CUSTOMER) to a user.
//	@Description	Requires an ADMIN or SUPER_ADMIN session.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path	string						true	"User ID"
//	@Param			request	body	authsdk.RoleChangeRequest	true	"New role"
//	@Success		204		"Role updated"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Unknown role"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Caller lacks the required role"
//	@Failure		404		{object}	authsdk.ErrorResponse	"No such user"
//	@Failure		500		{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/users/{id}/role [patch].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := r.PathValue("id")
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "User id is required")
		return
	}

	var req authsdk.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "Unknown role")
		return
	}

	if err := h.AuthService.ChangeRole(ctx, userID, role); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("role changed", "user_id", userID, "role", role, "changed_by", httpx.UserIDFromContext(ctx))
	w.WriteHeader(http.StatusNoContent)
}
