package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"messbook/internal/core"
	"messbook/internal/store"
)

// popup error codes reported by the browser client when the provider
// window never opened.
var blockedCodes = map[string]bool{
	"popup_blocked":                true,
	"auth/popup-blocked":           true,
	"auth/cancelled-popup-request": true,
}

// SignInBlocked reports whether a client-side provider error code means
// the sign-in window was blocked before any token was issued.
func SignInBlocked(code string) bool {
	return blockedCodes[code]
}

type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleAuthenticator verifies Google ID tokens and maps them onto member
// profiles. Repeat sign-ins with the same Google account resolve to the
// same profile.
type GoogleAuthenticator struct {
	clientID string
	profiles store.ProfileStore
	validate tokenValidator
}

func NewGoogleAuthenticator(clientID string, profiles store.ProfileStore) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		clientID: clientID,
		profiles: profiles,
		validate: idtoken.Validate,
	}
}

// Authenticate verifies the ID token and upserts the matching profile.
func (a *GoogleAuthenticator) Authenticate(ctx context.Context, rawToken string) (core.Profile, error) {
	payload, err := a.validate(ctx, rawToken, a.clientID)
	if err != nil {
		return core.Profile{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return core.Profile{}, core.ErrEmptyEmail
	}
	name, _ := payload.Claims["name"].(string)

	profile := core.Profile{
		ID:    profileIDForSubject(payload.Subject),
		Email: normalizeEmail(email),
		Name:  name,
	}
	if err := a.profiles.UpsertProfile(ctx, profile); err != nil {
		return core.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}

	// Duty days and notification state live on the stored profile, not
	// the token.
	stored, err := a.profiles.GetProfile(ctx, profile.ID)
	if err != nil {
		return core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return stored, nil
}

// profileIDForSubject derives a stable profile id from the Google account
// subject so the same account always maps to the same member.
func profileIDForSubject(sub string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("google:"+sub)).String()
}
