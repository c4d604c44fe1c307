package httpx_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/httpx"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// accessOnly is the smallest AccessVerifier: signature and expiry from HS256,
// then the token_use check.
type accessOnly struct {
	*jwtx.HS256
}

func (v accessOnly) VerifyAccess(_ context.Context, token string) (jwtx.Claims, error) {
	c, err := v.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if !c.IsAccess() {
		return jwtx.Claims{}, jwtx.ErrInvalidClaim
	}
	return c, nil
}

func newVerifier(t *testing.T, now time.Time) accessOnly {
	t.Helper()
	h, err := jwtx.NewHS256(bytes.Repeat([]byte{1}, 32), "backoffice")
	require.NoError(t, err)
	return accessOnly{h.WithClock(func() time.Time { return now })}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := newVerifier(t, now)

	var gotSubject string
	var gotRoles []string
	h := httpx.AuthnMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = httpx.SubjectFromContext(r.Context())
		gotRoles = httpx.RolesFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid access token", func(t *testing.T) {
		tok, err := v.Sign(jwtx.NewAccessClaims("alice", []string{"OPS"}, time.Minute, "", now))
		require.NoError(t, err)

		rec := serve("Bearer " + tok)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", gotSubject)
		require.Equal(t, []string{"OPS"}, gotRoles)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, serve("Basic abc").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := serve("Bearer not.a.jwt")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_token")
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := v.Sign(jwtx.NewAccessClaims("alice", nil, time.Minute, "", now.Add(-time.Hour)))
		require.NoError(t, err)

		rec := serve("Bearer " + tok)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "token_expired")
	})

	t.Run("refresh token refused", func(t *testing.T) {
		tok, err := v.Sign(jwtx.NewRefreshClaims("alice", time.Hour, "", now))
		require.NoError(t, err)

		rec := serve("Bearer " + tok)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAnyRole(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := newVerifier(t, now)
	h := httpx.Chain(okHandler(), httpx.AuthnMiddleware(v), httpx.RequireAnyRole("ADMIN"))

	serveAs := func(roles ...string) int {
		tok, err := v.Sign(jwtx.NewAccessClaims("alice", roles, time.Minute, "", now))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/roles", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, serveAs("ADMIN"))
	require.Equal(t, http.StatusOK, serveAs("OPS", "ADMIN"))
	require.Equal(t, http.StatusForbidden, serveAs("OPS"))
	require.Equal(t, http.StatusForbidden, serveAs())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Username string `json:"username"`
	}

	decode := func(s string) (body, error) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(s))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
		return b, err
	}

	b, err := decode(`{"username":"alice"}`)
	require.NoError(t, err)
	require.Equal(t, "alice", b.Username)

	for _, bad := range []string{``, `{`, `{"username":"a","extra":1}`, `{"username":"a"}{}`, `[]`} {
		_, err := decode(bad)
		require.ErrorIs(t, err, httpx.ErrBadBody, bad)
	}
}

func TestWriteJSONNoCache(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}
