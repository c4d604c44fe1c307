package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds everything the service needs at startup. Values come from an
// optional TOML file named by AUTH_CONFIG_FILE, with environment variables
// taking precedence over the file.
type Config struct {
	Issuer string `toml:"issuer"` // Token issuer claim (default: backoffice-auth)

	SigningSecret     string `toml:"signing_secret"`      // Optional: inline HS256 secret, at least 32 bytes
	SigningSecretFile string `toml:"signing_secret_file"` // Generated on first start when missing (default: ./signing.key)

	AccessTTL  time.Duration `toml:"access_ttl"`  // default: 15m
	RefreshTTL time.Duration `toml:"refresh_ttl"` // default: 168h
	TOTPIssuer string        `toml:"totp_issuer"` // Label shown in authenticator apps

	DatabaseDriver string `toml:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseFile   string `toml:"database_file"`   // SQLite path (default: ./auth.db)
	DatabaseURL    string `toml:"database_url"`    // Postgres connection URL
	PepperFile     string `toml:"pepper_file"`     // default: ./pepper

	Env                 string        `toml:"env"`        // dev, staging, prod (default: dev)
	LogLevel            string        `toml:"log_level"`  // default: info
	LogFormat           string        `toml:"log_format"` // json or text (default: json)
	Port                int           `toml:"port"`       // default: 8080
	ShutdownGracePeriod time.Duration `toml:"shutdown_grace_period"`
}

// DefaultConfig is used before the file and environment are applied.
func DefaultConfig() Config {
	return Config{
		Issuer:              "backoffice-auth",
		SigningSecretFile:   "signing.key",
		AccessTTL:           15 * time.Minute,
		RefreshTTL:          7 * 24 * time.Hour,
		TOTPIssuer:          "Ayurveda Admin",
		DatabaseDriver:      DriverSQLite,
		DatabaseFile:        "auth.db",
		PepperFile:          "pepper",
		Env:                 "dev",
		LogLevel:            "info",
		LogFormat:           "json",
		Port:                8080,
		ShutdownGracePeriod: 10 * time.Second,
	}
}

// LoadConfig builds the configuration and validates it.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("AUTH_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.Issuer = getEnvOrDefault("AUTH_ISSUER", cfg.Issuer)
	cfg.SigningSecret = getEnvOrDefault("AUTH_SIGNING_SECRET", cfg.SigningSecret)
	cfg.SigningSecretFile = getEnvOrDefault("AUTH_SIGNING_SECRET_FILE", cfg.SigningSecretFile)
	cfg.AccessTTL = getEnvDurationOrDefault("AUTH_ACCESS_TTL", cfg.AccessTTL)
	cfg.RefreshTTL = getEnvDurationOrDefault("AUTH_REFRESH_TTL", cfg.RefreshTTL)
	cfg.TOTPIssuer = getEnvOrDefault("AUTH_TOTP_ISSUER", cfg.TOTPIssuer)
	cfg.DatabaseDriver = getEnvOrDefault("AUTH_DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseFile = getEnvOrDefault("AUTH_DATABASE_FILE", cfg.DatabaseFile)
	cfg.DatabaseURL = getEnvOrDefault("AUTH_DATABASE_URL", cfg.DatabaseURL)
	cfg.PepperFile = getEnvOrDefault("AUTH_PEPPER_FILE", cfg.PepperFile)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that would stop the service working.
func (c Config) Validate() error {
	var errs []error

	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer must not be empty"))
	}
	if c.SigningSecret != "" && len(c.SigningSecret) < 32 {
		errs = append(errs, errors.New("AUTH_SIGNING_SECRET must be at least 32 bytes"))
	}
	if c.SigningSecret == "" && c.SigningSecretFile == "" {
		errs = append(errs, errors.New("one of AUTH_SIGNING_SECRET or AUTH_SIGNING_SECRET_FILE is required"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TTL must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("AUTH_REFRESH_TTL must be positive"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.DatabaseDriver))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
