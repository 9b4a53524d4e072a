package service

import (
	"context"
	"fmt"

	"messbook/internal/auth"
	"messbook/internal/core"
)

// Session is an issued bearer token plus the signed-in member.
type Session struct {
	Token   string
	Profile core.Profile
}

// SessionService signs members in and out. Sign-out also discards the
// record mirrors so a late fetch cannot surface another member's data.
type SessionService struct {
	passwords *auth.PasswordAuthenticator
	google    *auth.GoogleAuthenticator
	tokens    *auth.JWTManager
	records   *RecordService
}

func NewSessionService(passwords *auth.PasswordAuthenticator, google *auth.GoogleAuthenticator, tokens *auth.JWTManager, records *RecordService) *SessionService {
	return &SessionService{
		passwords: passwords,
		google:    google,
		tokens:    tokens,
		records:   records,
	}
}

// SignUp registers a new member and issues a session.
func (s *SessionService) SignUp(ctx context.Context, email, name, password string) (Session, error) {
	profile, err := s.passwords.Register(ctx, email, name, password)
	if err != nil {
		return Session{}, err
	}
	return s.issue(profile)
}

// SignIn authenticates email and password and issues a session.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (Session, error) {
	profile, err := s.passwords.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.issue(profile)
}

// SignInWithGoogle verifies a Google ID token and issues a session.
// clientError is the provider error code the browser reported when no
// token could be obtained; a blocked sign-in window maps to
// auth.ErrSignInBlocked.
func (s *SessionService) SignInWithGoogle(ctx context.Context, idToken, clientError string) (Session, error) {
	if clientError != "" {
		if auth.SignInBlocked(clientError) {
			return Session{}, auth.ErrSignInBlocked
		}
		return Session{}, fmt.Errorf("%w: provider error %s", auth.ErrInvalidCredentials, clientError)
	}
	if s.google == nil {
		return Session{}, fmt.Errorf("google sign-in not configured: %w", auth.ErrInvalidCredentials)
	}

	profile, err := s.google.Authenticate(ctx, idToken)
	if err != nil {
		return Session{}, err
	}
	return s.issue(profile)
}

// SignOut ends the member's session. Tokens are stateless; what must
// happen here is dropping the member's cached record snapshots.
func (s *SessionService) SignOut(_ context.Context, ownerID string) {
	if s.records != nil {
		s.records.Discard(ownerID)
	}
}

func (s *SessionService) issue(profile core.Profile) (Session, error) {
	token, err := s.tokens.Generate(profile)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: token, Profile: profile}, nil
}
