package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// AccessVerifier checks a bearer token and returns its claims. It must refuse
// anything but an access token, and an expired token's error must match
// jwtx.ErrExpired. Logging rejected tokens is the verifier's job.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (jwtx.Claims, error)
}

// AuthnMiddleware requires a valid access token in the Authorization header
// and stores its claims on the request context.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "invalid_token", "missing bearer token")
				return
			}

			claims, err := v.VerifyAccess(ctx, raw)
			switch {
			case errors.Is(err, jwtx.ErrExpired):
				writeBearerError(w, "token_expired", "token expired")
				return
			case err != nil:
				writeBearerError(w, "invalid_token", "token verification failed")
				return
			}

			ctx = ContextWithClaims(ctx, claims)
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("subject", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RFC 6750-compliant error response for bearer auth, with a JSON body in the
// same shape as every other API error.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
