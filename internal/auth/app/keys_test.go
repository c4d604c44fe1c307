package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestInitSignerFromFileIsStable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultConfig()
	cfg.SigningSecretFile = filepath.Join(t.TempDir(), "keys", "signing.key")

	first, err := InitSigner(cfg, logger)
	require.NoError(t, err)

	tok, err := first.Sign(jwtx.NewRefreshClaims("acct", cfg.RefreshTTL, cfg.Issuer, time.Now()))
	require.NoError(t, err)

	// A restart reads the same file and still accepts old tokens.
	second, err := InitSigner(cfg, logger)
	require.NoError(t, err)
	claims, err := second.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "acct", claims.Subject)
}

func TestInitSignerInlineSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultConfig()
	cfg.SigningSecretFile = ""
	cfg.SigningSecret = "an-inline-secret-that-is-long-enough!"

	s, err := InitSigner(cfg, logger)
	require.NoError(t, err)
	require.Equal(t, cfg.Issuer, s.Issuer())

	cfg.SigningSecret = "short"
	_, err = InitSigner(cfg, logger)
	require.ErrorIs(t, err, jwtx.ErrWeakKey)
}
