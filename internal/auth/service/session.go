package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/idx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

type LoginInput struct {
	Username  string
	Password  string
	TwoFACode string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// SessionService composes credentials, TOTP and tokens into the login,
// registration, refresh and 2FA workflows.
type SessionService struct {
	Store       store.Store
	Credentials *CredentialVerifier
	TOTP        *TOTPManager
	Tokens      *TokenService
	Hasher      cryptox.Hasher
	Now         func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Login verifies the password and, when enabled, the second factor, then
// records the login and mints a token pair.
//
// Wrong passwords and wrong codes bump the account's failed-attempt counter.
// Nothing acts on the counter yet.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx).With(slog.String("username", in.Username))

	acct, err := s.Credentials.Verify(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) && acct.ID != "" {
			s.recordFailure(ctx, acct.ID)
		}
		l.Warn("login rejected", slog.String("reason", err.Error()))
		return domain.LoginResult{}, err
	}

	if acct.TwoFAState() == domain.TwoFAEnabled {
		if err := s.TOTP.VerifyLogin(&acct, in.TwoFACode); err != nil {
			if errors.Is(err, ErrInvalidCode) {
				s.recordFailure(ctx, acct.ID)
				l.Warn("login rejected", slog.String("reason", err.Error()))
			}
			return domain.LoginResult{}, err
		}
	}

	now := s.now()
	if err := s.Store.Accounts().RecordLogin(ctx, acct.ID, now); err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to record login: %w", err)
	}
	acct.FailedLoginAttempts = 0
	acct.LastLoginAt = &now

	result, err := s.issue(&acct)
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("login succeeded", slog.String("account_id", acct.ID))
	return result, nil
}

func (s *SessionService) recordFailure(ctx context.Context, accountID string) {
	if err := s.Store.Accounts().IncrementFailedLogins(ctx, accountID); err != nil {
		slogx.FromContext(ctx).Error("failed to record failed login",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}
}

// Register creates an enabled account without 2FA and signs it in. The very
// first account becomes ADMIN; every later one gets OPS.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx).With(slog.String("username", in.Username))

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateRegistration(in); err != nil {
		return domain.LoginResult{}, err
	}

	if taken, err := s.Store.Accounts().UsernameExists(ctx, in.Username); err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return domain.LoginResult{}, ErrDuplicateUsername
	}

	if taken, err := s.Store.Accounts().EmailExists(ctx, in.Email); err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return domain.LoginResult{}, ErrDuplicateEmail
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acct, err := s.createAccount(ctx, in, hash)
	if errors.Is(err, errRoleRace) {
		acct, err = s.createAccount(ctx, in, hash)
	}
	if err != nil {
		return domain.LoginResult{}, err
	}

	result, err := s.issue(&acct)
	if err != nil {
		return domain.LoginResult{}, err
	}

	l.Info("account registered",
		slog.String("account_id", acct.ID),
		slog.Any("roles", result.User.Roles),
	)
	return result, nil
}

func (s *SessionService) createAccount(ctx context.Context, in RegisterInput, hash string) (domain.Account, error) {
	now := s.now()
	acct := domain.Account{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := initialRole(ctx, tx, acct.ID, now)
		if err != nil {
			return err
		}
		acct.Roles = []domain.Role{role}

		switch err := tx.Accounts().CreateAccount(ctx, acct); {
		case errors.Is(err, store.ErrUsernameTaken):
			return ErrDuplicateUsername
		case errors.Is(err, store.ErrEmailTaken):
			return ErrDuplicateEmail
		case err != nil:
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

func validateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" || in.Username != strings.TrimSpace(in.Username) {
		return fmt.Errorf("%w: username is required and may not have surrounding spaces", ErrInvalidInput)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	return nil
}

// Refresh trades a refresh token for a new pair built from the account's
// current roles. There is no reuse detection: a refresh token stays usable
// until it expires.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.Tokens.ParseRefresh(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	acct, err := s.account(ctx, claims.Subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := acct.CanAuthenticate(); err != nil {
		return domain.TokenPair{}, err
	}

	return s.Tokens.IssuePair(acct.Username, acct.RoleNames())
}

// Profile returns the caller's own account view.
func (s *SessionService) Profile(ctx context.Context, username string) (domain.Profile, error) {
	acct, err := s.account(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.ProfileOf(&acct), nil
}

// EnableTwoFA starts (or restarts) enrollment and persists the pending secret.
func (s *SessionService) EnableTwoFA(ctx context.Context, username string) (domain.TwoFAEnrollment, error) {
	acct, err := s.account(ctx, username)
	if err != nil {
		return domain.TwoFAEnrollment{}, err
	}

	enrollment, err := s.TOTP.BeginEnrollment(&acct)
	if err != nil {
		return domain.TwoFAEnrollment{}, err
	}

	if err := s.Store.Accounts().UpdateTwoFA(ctx, acct.ID, acct.TwoFAEnabled, acct.TwoFASecret); err != nil {
		return domain.TwoFAEnrollment{}, fmt.Errorf("failed to store 2FA secret: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA enrollment started", slog.String("account_id", acct.ID))
	return enrollment, nil
}

// ConfirmTwoFA completes a pending enrollment.
func (s *SessionService) ConfirmTwoFA(ctx context.Context, username, code string) error {
	acct, err := s.account(ctx, username)
	if err != nil {
		return err
	}

	if err := s.TOTP.ConfirmEnrollment(&acct, code); err != nil {
		return err
	}

	if err := s.Store.Accounts().UpdateTwoFA(ctx, acct.ID, acct.TwoFAEnabled, acct.TwoFASecret); err != nil {
		return fmt.Errorf("failed to enable 2FA: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA enabled", slog.String("account_id", acct.ID))
	return nil
}

// DisableTwoFA turns 2FA off and forgets the secret.
func (s *SessionService) DisableTwoFA(ctx context.Context, username string) error {
	acct, err := s.account(ctx, username)
	if err != nil {
		return err
	}

	if err := s.TOTP.Disable(&acct); err != nil {
		return err
	}

	if err := s.Store.Accounts().UpdateTwoFA(ctx, acct.ID, false, ""); err != nil {
		return fmt.Errorf("failed to disable 2FA: %w", err)
	}

	slogx.FromContext(ctx).Warn("2FA disabled", slog.String("account_id", acct.ID))
	return nil
}

// Logout has no durable effect. Issued tokens remain valid until they expire
// because nothing records revoked token ids.
func (s *SessionService) Logout(ctx context.Context, username string) error {
	slogx.FromContext(ctx).Info("logout", slog.String("username", username))
	return nil
}

func (s *SessionService) account(ctx context.Context, username string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	return acct, nil
}

func (s *SessionService) issue(acct *domain.Account) (domain.LoginResult, error) {
	pair, err := s.Tokens.IssuePair(acct.Username, acct.RoleNames())
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{
		TokenPair: pair,
		User:      domain.SummaryOf(acct),
	}, nil
}
