package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AUTH_CONFIG_FILE", "AUTH_ISSUER", "AUTH_SIGNING_SECRET", "AUTH_SIGNING_SECRET_FILE",
		"AUTH_ACCESS_TTL", "AUTH_REFRESH_TTL", "AUTH_TOTP_ISSUER", "AUTH_DATABASE_DRIVER",
		"AUTH_DATABASE_FILE", "AUTH_DATABASE_URL", "AUTH_PEPPER_FILE", "ENV", "LOG_LEVEL",
		"LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	require.Equal(t, "Ayurveda Admin", cfg.TOTPIssuer)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "auth.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
issuer = "from-file"
access_ttl = "5m"
database_driver = "postgres"
database_url = "postgres://auth@localhost/auth"
port = 9000
`), 0600))

	t.Setenv("AUTH_CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("AUTH_REFRESH_TTL", "90")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.Issuer)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 90*time.Minute, cfg.RefreshTTL)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 9100, cfg.Port)
}

func TestLoadConfigBadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.SigningSecret = "short" }},
		{"no secret source", func(c *Config) { c.SigningSecretFile = "" }},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"negative refresh ttl", func(c *Config) { c.RefreshTTL = -time.Second }},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"empty issuer", func(c *Config) { c.Issuer = "" }},
	}

	require.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
