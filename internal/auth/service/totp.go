package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultTOTPIssuer = "Ayurveda Admin"
	DefaultTOTPPeriod = 30
	// DefaultTOTPSkew accepts codes up to five steps either side of now,
	// roughly 150 seconds of clock drift.
	DefaultTOTPSkew = 5

	totpDigits     = otp.DigitsSix
	totpSecretSize = 20
)

// TOTPManager drives the per-account two-factor lifecycle:
// Disabled, then Pending (secret stored, flag off), then Enabled.
// It mutates the account in memory; persisting is the caller's job.
type TOTPManager struct {
	Issuer string
	Period uint
	Skew   uint
	Now    func() time.Time
}

func (m *TOTPManager) opts() totp.ValidateOpts {
	period, skew := m.Period, m.Skew
	if period == 0 {
		period = DefaultTOTPPeriod
	}
	if skew == 0 {
		skew = DefaultTOTPSkew
	}
	return totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    totpDigits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func (m *TOTPManager) issuer() string {
	if m.Issuer != "" {
		return m.Issuer
	}
	return DefaultTOTPIssuer
}

func (m *TOTPManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// BeginEnrollment stores a fresh secret on a, leaving 2FA pending, and
// returns the secret with its otpauth:// provisioning URI. A pending
// enrollment is replaced.
func (m *TOTPManager) BeginEnrollment(a *domain.Account) (domain.TwoFAEnrollment, error) {
	if a.TwoFAState() == domain.TwoFAEnabled {
		return domain.TwoFAEnrollment{}, ErrAlreadyEnabled
	}

	opts := m.opts()
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer(),
		AccountName: a.Email,
		Period:      opts.Period,
		SecretSize:  totpSecretSize,
		Digits:      opts.Digits,
		Algorithm:   opts.Algorithm,
	})
	if err != nil {
		return domain.TwoFAEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	a.TwoFASecret = key.Secret()
	a.TwoFAEnabled = false

	return domain.TwoFAEnrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
	}, nil
}

// ConfirmEnrollment enables 2FA on a pending account when code matches. A
// wrong code leaves the account pending.
func (m *TOTPManager) ConfirmEnrollment(a *domain.Account, code string) error {
	switch a.TwoFAState() {
	case domain.TwoFAEnabled:
		return ErrAlreadyEnabled
	case domain.TwoFADisabled:
		return ErrNotEnabled
	}

	if err := m.check(a.TwoFASecret, code); err != nil {
		return err
	}

	a.TwoFAEnabled = true
	return nil
}

// VerifyLogin checks the second factor of an enabled account.
func (m *TOTPManager) VerifyLogin(a *domain.Account, code string) error {
	if a.TwoFAState() != domain.TwoFAEnabled {
		return ErrNotEnabled
	}
	return m.check(a.TwoFASecret, code)
}

// Disable clears the secret and flag from an enabled or pending account.
func (m *TOTPManager) Disable(a *domain.Account) error {
	if a.TwoFAState() == domain.TwoFADisabled {
		return ErrNotEnabled
	}
	a.TwoFASecret = ""
	a.TwoFAEnabled = false
	return nil
}

// GenerateCode returns the zero-padded code for secret at t.
func (m *TOTPManager) GenerateCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, m.opts())
}

func (m *TOTPManager) check(secret, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrCodeRequired
	}
	if !isSixDigits(code) {
		return ErrInvalidCode
	}

	ok, err := totp.ValidateCustom(code, secret, m.now().UTC(), m.opts())
	if err != nil || !ok {
		return ErrInvalidCode
	}
	return nil
}

func isSixDigits(code string) bool {
	if len(code) != totpDigits.Length() {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
