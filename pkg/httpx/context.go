package httpx

import (
	"context"

	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject"
	CtxKeyRoles   ctxKey = "roles"
)

// ContextWithClaims stores the verified access-token claims on ctx.
func ContextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	return ctx
}

// SubjectFromContext returns the authenticated username, or "".
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// RolesFromContext returns the role claims of the caller.
func RolesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return v
	}
	return nil
}
