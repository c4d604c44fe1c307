package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// TokenService mints and checks the access/refresh pair. The signer holds a
// key derived once at startup and is safe for concurrent use.
type TokenService struct {
	Signer     *jwtx.HS256
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

var _ httpx.AccessVerifier = (*TokenService)(nil)

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// IssueAccessToken signs a short-lived token carrying the subject's roles.
func (s *TokenService) IssueAccessToken(subject string, roles []string) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	claims := jwtx.NewAccessClaims(subject, roles, s.accessTTL(), s.Signer.Issuer(), s.now())
	return s.Signer.Sign(claims)
}

// IssueRefreshToken signs a long-lived token with no role claims.
func (s *TokenService) IssueRefreshToken(subject string) (string, error) {
	claims := jwtx.NewRefreshClaims(subject, s.refreshTTL(), s.Signer.Issuer(), s.now())
	return s.Signer.Sign(claims)
}

// IssuePair mints a fresh access and refresh token for subject.
func (s *TokenService) IssuePair(subject string, roles []string) (domain.TokenPair, error) {
	access, err := s.IssueAccessToken(subject, roles)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.IssueRefreshToken(subject)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL() / time.Second),
	}, nil
}

// Validate checks the signature, expiry, token_use and subject of an access
// token. Expired tokens with a good signature report ErrTokenExpired;
// everything else that fails is ErrTokenInvalid.
func (s *TokenService) Validate(ctx context.Context, token, expectedSubject string) (jwtx.Claims, error) {
	claims, err := s.VerifyAccess(ctx, token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if err := claims.ValidateSubject(expectedSubject); err != nil {
		s.logInvalid(ctx, token, err)
		return jwtx.Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyAccess is Validate for a bearer token whose subject is not known in
// advance. It satisfies httpx.AccessVerifier.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.verify(ctx, token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if !claims.IsAccess() {
		s.logInvalid(ctx, token, errors.New("not an access token"))
		return jwtx.Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

// ParseRefresh validates a refresh token against its own subject. Access
// tokens presented here are refused.
func (s *TokenService) ParseRefresh(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.verify(ctx, token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if !claims.IsRefresh() || claims.Subject == "" {
		s.logInvalid(ctx, token, errors.New("not a refresh token"))
		return jwtx.Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

func (s *TokenService) verify(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Signer.WithClock(s.now).Verify(token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwtx.ErrExpired):
		slogx.FromContext(ctx).Debug("expired token presented",
			slog.String("token_fingerprint", cryptox.FingerprintToken(token)),
		)
		return jwtx.Claims{}, ErrTokenExpired
	default:
		s.logInvalid(ctx, token, err)
		return jwtx.Claims{}, ErrTokenInvalid
	}
}

// logInvalid records a rejected token as a security event. Only the
// fingerprint is written.
func (s *TokenService) logInvalid(ctx context.Context, token string, reason error) {
	slogx.FromContext(ctx).Warn("invalid token rejected",
		slog.String("token_fingerprint", cryptox.FingerprintToken(token)),
		slog.String("reason", reason.Error()),
	)
}
