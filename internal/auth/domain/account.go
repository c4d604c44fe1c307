package domain

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrAccountDisabled = errors.New("account is disabled")
	ErrAccountLocked   = errors.New("account is locked")
)

// TwoFAState is derived from the stored flag and secret, never stored.
type TwoFAState int

const (
	TwoFADisabled TwoFAState = iota // no secret, flag off
	TwoFAPending                    // secret issued, not yet confirmed
	TwoFAEnabled                    // confirmed, required at login
)

func (s TwoFAState) String() string {
	switch s {
	case TwoFAPending:
		return "pending"
	case TwoFAEnabled:
		return "enabled"
	default:
		return "disabled"
	}
}

type Account struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string // argon2id PHC, or bcrypt for imported accounts
	FullName            string
	PhoneNumber         string
	Enabled             bool
	Locked              bool
	TwoFAEnabled        bool
	TwoFASecret         string // base32, empty when none issued
	FailedLoginAttempts int
	LastLoginAt         *time.Time
	Roles               []Role
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TwoFAState reports where the account is in the enrollment lifecycle. A
// flag without a secret cannot be satisfied, so it counts as disabled.
func (a *Account) TwoFAState() TwoFAState {
	switch {
	case a.TwoFASecret == "":
		return TwoFADisabled
	case a.TwoFAEnabled:
		return TwoFAEnabled
	default:
		return TwoFAPending
	}
}

// RoleNames returns the sorted, de-duplicated names of the account's roles.
func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, string(r.Name))
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// CanAuthenticate returns nil only when the account may sign in. Disabled is
// reported before locked.
func (a *Account) CanAuthenticate() error {
	if !a.Enabled {
		return ErrAccountDisabled
	}
	if a.Locked {
		return ErrAccountLocked
	}
	return nil
}
