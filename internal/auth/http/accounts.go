package http

import (
	"net/http"

	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

type AccountsHandler struct {
	AccountService *service.AccountService
}

// HandleSetStatus handles PUT /v1/accounts/{username}/status
//
//	@Summary		Set account status
//	@Description	Enables/disables and locks/unlocks an account. Existing tokens stay valid until expiry; login and refresh are refused immediately. Requires ADMIN.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			username	path		string							true	"Account username"
//	@Param			request		body		authsdk.AccountStatusRequest	true	"New flags"
//	@Success		200			{object}	authsdk.AccountStatusResponse
//	@Failure		400			{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403			{object}	authsdk.ErrorResponse	"Caller is not ADMIN"
//	@Failure		404			{object}	authsdk.ErrorResponse	"Unknown account"
//	@Router			/v1/accounts/{username}/status [put].
func (h *AccountsHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AccountStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	acct, err := h.AccountService.SetStatus(r.Context(),
		httpx.SubjectFromContext(r.Context()),
		r.PathValue("username"),
		req.Enabled, req.Locked,
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AccountStatusResponse{
		Username: acct.Username,
		Enabled:  acct.Enabled,
		Locked:   acct.Locked,
	})
}
