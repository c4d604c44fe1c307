package authsdk

import "time"

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// TwoFACode is required once the account has two-factor enabled.
	TwoFACode string `json:"two_fa_code,omitempty"`
}

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// RefreshRequest is the optional body of POST /v1/auth/refresh. The
// X-Refresh-Token header takes precedence.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserSummary is the role-bearing account summary returned with tokens.
type UserSummary struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name,omitempty"`
	Roles        []string `json:"roles"`
	TwoFAEnabled bool     `json:"two_fa_enabled"`
}

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int64 `json:"expires_in"`

	// User is omitted on refresh.
	User *UserSummary `json:"user,omitempty"`
}

// ProfileResponse is returned by GET /v1/auth/me.
type ProfileResponse struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Roles        []string   `json:"roles"`
	TwoFAEnabled bool       `json:"two_fa_enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TwoFAEnableResponse carries the secret and otpauth URI for an
// authenticator app. The secret is only ever returned here.
type TwoFAEnableResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// TwoFAVerifyRequest is the body of POST /v1/auth/2fa/verify.
type TwoFAVerifyRequest struct {
	Code string `json:"code"`
}

// RoleResponse describes one role.
type RoleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RolesResponse is returned by GET /v1/roles.
type RolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// AccountStatusRequest is the body of PUT /v1/accounts/{username}/status.
type AccountStatusRequest struct {
	Enabled bool `json:"enabled"`
	Locked  bool `json:"locked"`
}

// AccountStatusResponse echoes the account flags after an update.
type AccountStatusResponse struct {
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
	Locked   bool   `json:"locked"`
}
