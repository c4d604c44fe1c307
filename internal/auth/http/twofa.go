package http

import (
	"net/http"

	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

// TwoFAHandler serves the caller's own two-factor lifecycle.
type TwoFAHandler struct {
	Sessions *service.SessionService
}

// HandleEnable handles POST /v1/auth/2fa/enable
//
//	@Summary		Start 2FA enrollment
//	@Description	Generates a TOTP secret for the caller and returns it with an otpauth:// provisioning URI. Two-factor stays off until confirmed with /v1/auth/2fa/verify. Calling again before confirming replaces the secret.
//	@Tags			Two-factor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFAEnableResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409	{object}	authsdk.ErrorResponse	"Already enabled"
//	@Router			/v1/auth/2fa/enable [post].
func (h *TwoFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	enrollment, err := h.Sessions.EnableTwoFA(r.Context(), httpx.SubjectFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFAEnableResponse{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
	})
}

// HandleVerify handles POST /v1/auth/2fa/verify
//
//	@Summary		Confirm 2FA enrollment
//	@Description	Confirms a pending enrollment with a current code from the authenticator and enables two-factor.
//	@Tags			Two-factor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.TwoFAVerifyRequest	true	"Six-digit code"
//	@Success		204		"Two-factor enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_code, two_fa_required or invalid token"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Already enabled or no enrollment in progress"
//	@Router			/v1/auth/2fa/verify [post].
func (h *TwoFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TwoFAVerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Sessions.ConfirmTwoFA(r.Context(), httpx.SubjectFromContext(r.Context()), req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /v1/auth/2fa/disable
//
//	@Summary		Disable 2FA
//	@Description	Turns two-factor off for the caller and discards the secret. Also cancels a pending enrollment.
//	@Tags			Two-factor
//	@Security		BearerAuth
//	@Success		204	"Two-factor disabled"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		409	{object}	authsdk.ErrorResponse	"Not enabled"
//	@Router			/v1/auth/2fa/disable [delete].
func (h *TwoFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.DisableTwoFA(r.Context(), httpx.SubjectFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
