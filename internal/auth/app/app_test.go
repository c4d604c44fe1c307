package app

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestApplicationWiring(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DatabaseFile = filepath.Join(dir, "auth.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.SigningSecretFile = filepath.Join(dir, "signing.key")
	cfg.LogLevel = "error"
	require.NoError(t, cfg.Validate())

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	client := authsdk.NewSDKClient(srv.URL)
	sess, err := client.RegisterSession(t.Context(), authsdk.RegisterRequest{
		Username: "first",
		Email:    "first@example.com",
		Password: "a-long-enough-password",
	})
	require.NoError(t, err)
	require.True(t, sess.HasRole("ADMIN"))

	me, err := sess.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "first", me.Username)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, BuildVersion, live.Version)

	require.FileExists(t, cfg.PepperFile)
	require.FileExists(t, cfg.SigningSecretFile)
}
