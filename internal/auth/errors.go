package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authorization token required")

	// ErrSignInBlocked is returned when the client reports that the
	// provider sign-in window was blocked before a token could be issued.
	ErrSignInBlocked = errors.New("sign-in window was blocked")
)
