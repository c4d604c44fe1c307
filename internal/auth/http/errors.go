package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// serviceErrors maps each workflow failure to the response the client sees.
var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrAccountDisabled, authsdk.ErrAccountDisabled},
	{service.ErrAccountLocked, authsdk.ErrAccountLocked},
	{service.ErrCodeRequired, authsdk.ErrTwoFARequired},
	{service.ErrInvalidCode, authsdk.ErrInvalidCode},
	{service.ErrAlreadyEnabled, authsdk.ErrTwoFAAlreadyEnabled},
	{service.ErrNotEnabled, authsdk.ErrTwoFANotEnabled},
	{service.ErrTokenInvalid, authsdk.ErrInvalidToken},
	{service.ErrTokenExpired, authsdk.ErrTokenExpired},
	{service.ErrDuplicateUsername, authsdk.ErrUsernameTaken},
	{service.ErrDuplicateEmail, authsdk.ErrEmailTaken},
	{service.ErrMissingRole, authsdk.ErrMissingRole},
	{service.ErrAccountNotFound, authsdk.ErrNotFound},
}

// writeServiceError writes the mapped client error. Unmapped errors are
// logged and reported as a bare 500 so no internals reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, httpx.ErrBadBody) {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.api.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("unhandled error",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	authsdk.ErrServerError.WriteError(w)
}
