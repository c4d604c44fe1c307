package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"
)

// refreshBuffer refreshes the access token this long before it expires.
const refreshBuffer = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
// Sessions are safe for concurrent use.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         *UserSummary
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  tok.AccessToken,
		refreshToken: tok.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshBuffer),
		user:         tok.User,
	}
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tok, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshBuffer)

	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns the summary received at login or registration, nil for
// sessions built from raw tokens.
func (s *Session) User() *UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// HasRole reports whether the login-time summary lists role.
func (s *Session) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && slices.Contains(s.user.Roles, role)
}

// Me fetches the caller's profile.
func (s *Session) Me(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the server the session is over. Tokens stay valid until they
// expire, the local copies are dropped.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}

// EnableTwoFA starts enrollment and returns the shared secret.
func (s *Session) EnableTwoFA(ctx context.Context) (*TwoFAEnableResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/2fa/enable", nil, nil)
	if err != nil {
		return nil, err
	}

	var out TwoFAEnableResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTwoFA confirms enrollment with a code from the authenticator.
func (s *Session) VerifyTwoFA(ctx context.Context, code string) error {
	body, err := json.Marshal(TwoFAVerifyRequest{Code: code})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/2fa/verify", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DisableTwoFA turns two-factor off for the caller.
func (s *Session) DisableTwoFA(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/auth/2fa/disable", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ListRoles lists every role. Requires ADMIN.
func (s *Session) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/roles", nil, nil)
	if err != nil {
		return nil, err
	}

	var out RolesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

// SetAccountStatus enables/disables and locks/unlocks another account.
// Requires ADMIN.
func (s *Session) SetAccountStatus(ctx context.Context, username string, enabled, locked bool) (*AccountStatusResponse, error) {
	body, err := json.Marshal(AccountStatusRequest{Enabled: enabled, Locked: locked})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	path := "/v1/accounts/" + url.PathEscape(username) + "/status"
	resp, err := s.doAuthRequest(ctx, http.MethodPut, path, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out AccountStatusResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
