package domain

import "time"

const TokenTypeBearer = "Bearer"

// TokenPair is what login, registration and refresh hand back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access token lifetime in seconds
}

// ProfileSummary is the role-bearing summary returned alongside tokens.
type ProfileSummary struct {
	Username     string
	Email        string
	FullName     string
	Roles        []string
	TwoFAEnabled bool
}

type LoginResult struct {
	TokenPair
	User ProfileSummary
}

// Profile is the caller's own account view. It never carries the password
// hash or the TOTP secret.
type Profile struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PhoneNumber  string
	Roles        []string
	TwoFAEnabled bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// SummaryOf builds the token-response summary for a.
func SummaryOf(a *Account) ProfileSummary {
	return ProfileSummary{
		Username:     a.Username,
		Email:        a.Email,
		FullName:     a.FullName,
		Roles:        a.RoleNames(),
		TwoFAEnabled: a.TwoFAState() == TwoFAEnabled,
	}
}

// ProfileOf builds the full profile view for a.
func ProfileOf(a *Account) Profile {
	return Profile{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		FullName:     a.FullName,
		PhoneNumber:  a.PhoneNumber,
		Roles:        a.RoleNames(),
		TwoFAEnabled: a.TwoFAState() == TwoFAEnabled,
		LastLoginAt:  a.LastLoginAt,
		CreatedAt:    a.CreatedAt,
	}
}
