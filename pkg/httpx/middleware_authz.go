package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole the caller must hold at least one of the provided roles.
// Roles come from the access token and are as fresh as its issuance.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, have := range RolesFromContext(r.Context()) {
				if _, ok := want[have]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error":             "insufficient_role",
				"error_description": "requires one of: " + strings.Join(required, ", "),
			})
		})
	}
}
