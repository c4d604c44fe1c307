package service

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
)

// Every failure the session workflows surface to callers. The HTTP layer maps
// each one to a status code; none of them carry hash or secret material.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = domain.ErrAccountDisabled
	ErrAccountLocked      = domain.ErrAccountLocked

	ErrCodeRequired   = errors.New("two-factor code required")
	ErrInvalidCode    = errors.New("invalid two-factor code")
	ErrAlreadyEnabled = errors.New("two-factor authentication already enabled")
	ErrNotEnabled     = errors.New("two-factor authentication not enabled")

	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired also matches jwtx.ErrExpired, which is what bearer
	// middleware outside this package checks for.
	ErrTokenExpired = fmt.Errorf("token expired: %w", jwtx.ErrExpired)

	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrMissingRole       = errors.New("required role is not defined")
	ErrAccountNotFound   = errors.New("account not found")

	ErrInvalidInput = errors.New("invalid input")
)
