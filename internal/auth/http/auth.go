package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

// AuthHandler serves the session endpoints under /v1/auth.
type AuthHandler struct {
	Sessions *service.SessionService
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Exchanges a username and password for an access and refresh token. Accounts with two-factor enabled must also send two_fa_code; without it the response is 401 two_fa_required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials, two_fa_required or invalid_code"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Account disabled"
//	@Failure		423		{object}	authsdk.ErrorResponse	"Account locked"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Sessions.Login(r.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		TwoFACode: req.TwoFACode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse(res))
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Register an account
//	@Description	Creates an enabled account and signs it in. The first account ever registered is granted ADMIN, every later one OPS.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or invalid fields"
//	@Failure		409		{object}	authsdk.ErrorResponse	"username_taken or email_taken"
//	@Failure		422		{object}	authsdk.ErrorResponse	"ADMIN role missing"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Sessions.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, loginResponse(res))
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Refresh tokens
//	@Description	Trades a refresh token, sent in the X-Refresh-Token header or as a JSON body, for a new token pair carrying the account's current roles.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			X-Refresh-Token	header		string					false	"Refresh token"
//	@Param			request			body		authsdk.RefreshRequest	false	"Refresh token when the header is absent"
//	@Success		200				{object}	authsdk.TokenResponse
//	@Failure		400				{object}	authsdk.ErrorResponse	"No refresh token supplied"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid_token or token_expired"
//	@Failure		403				{object}	authsdk.ErrorResponse	"Account disabled"
//	@Failure		404				{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Failure		423				{object}	authsdk.ErrorResponse	"Account locked"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get(authsdk.RefreshTokenHeader))
	if token == "" && r.ContentLength != 0 {
		var req authsdk.RefreshRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary		Log out
//	@Description	Acknowledges the logout. Tokens are not revoked and remain valid until they expire.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Logged out"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), httpx.SubjectFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary		Current account
//	@Description	Returns the profile of the account named by the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.Sessions.Profile(r.Context(), httpx.SubjectFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		ID:           p.ID,
		Username:     p.Username,
		Email:        p.Email,
		FullName:     p.FullName,
		PhoneNumber:  p.PhoneNumber,
		Roles:        p.Roles,
		TwoFAEnabled: p.TwoFAEnabled,
		LastLoginAt:  p.LastLoginAt,
		CreatedAt:    p.CreatedAt,
	})
}

func tokenResponse(p domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}

func loginResponse(res domain.LoginResult) authsdk.TokenResponse {
	out := tokenResponse(res.TokenPair)
	out.User = &authsdk.UserSummary{
		Username:     res.User.Username,
		Email:        res.User.Email,
		FullName:     res.User.FullName,
		Roles:        res.User.Roles,
		TwoFAEnabled: res.User.TwoFAEnabled,
	}
	return out
}
