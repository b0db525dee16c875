package auth

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrOAuthDisabled       = errors.New("oauth login is not configured")
	ErrOAuthEmailNotLinked = errors.New("google account is not linked to an employee")
)
