package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
)

// signingSecretSize is the length of a generated signing secret file.
const signingSecretSize = 32

// InitSigner builds the HS256 signer. An inline AUTH_SIGNING_SECRET wins,
// otherwise the secret file is read or created. Either way the raw secret is
// run through HKDF before use, so rotating the file invalidates every token.
func InitSigner(cfg Config, logger *slog.Logger) (*jwtx.HS256, error) {
	var secret []byte
	if cfg.SigningSecret != "" {
		secret = []byte(cfg.SigningSecret)
		logger.Info("using signing secret from environment")
	} else {
		s, err := cryptox.LoadOrGenerateSecret(cfg.SigningSecretFile, signingSecretSize)
		if err != nil {
			return nil, fmt.Errorf("load signing secret: %w", err)
		}
		secret = s
		logger.Info("signing secret loaded", "path", cfg.SigningSecretFile)
	}

	key, err := jwtx.DeriveHMACKey(secret, jwtx.SigningKeyInfo)
	if err != nil {
		return nil, err
	}
	return jwtx.NewHS256(key, cfg.Issuer)
}
