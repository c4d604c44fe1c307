package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewAccessClaims(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := jwtx.NewAccessClaims("alice", []string{"OPS"}, jwtx.DefaultAccessTokenTTL, "backoffice", now)

	require.Equal(t, "alice", c.Subject)
	require.Equal(t, []string{"OPS"}, c.Roles)
	require.True(t, c.IsAccess())
	require.False(t, c.IsRefresh())
	require.Equal(t, now.Unix(), c.IssuedAt.Unix())
	require.Equal(t, now.Add(15*time.Minute).Unix(), c.ExpiresAt.Unix())

	_, err := uuid.Parse(c.ID)
	require.NoError(t, err)
}

func TestNewRefreshClaimsCarryNoRoles(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := jwtx.NewRefreshClaims("alice", jwtx.DefaultRefreshTokenTTL, "backoffice", now)

	require.True(t, c.IsRefresh())
	require.Empty(t, c.Roles)
	require.Equal(t, now.Add(7*24*time.Hour).Unix(), c.ExpiresAt.Unix())
}

func TestJTIUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id := jwtx.NewJTI()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestValidateSubject(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}

	require.NoError(t, c.ValidateSubject("alice"))
	require.ErrorIs(t, c.ValidateSubject("bob"), jwtx.ErrSubject)

	empty := &jwtx.Claims{}
	require.ErrorIs(t, empty.ValidateSubject(""), jwtx.ErrSubject)
}
