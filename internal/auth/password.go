package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"messbook/internal/core"
	"messbook/internal/store"
)

const minPasswordLength = 8

// PasswordAuthenticator implements email/password sign-up and sign-in
// backed by bcrypt hashes.
type PasswordAuthenticator struct {
	credentials store.CredentialStore
	profiles    store.ProfileStore
}

func NewPasswordAuthenticator(credentials store.CredentialStore, profiles store.ProfileStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		credentials: credentials,
		profiles:    profiles,
	}
}

// ValidatePassword checks that the password meets the minimum requirements.
func (a *PasswordAuthenticator) ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new member account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, password string) (core.Profile, error) {
	email = normalizeEmail(email)
	if email == "" {
		return core.Profile{}, core.ErrEmptyEmail
	}
	if err := a.ValidatePassword(password); err != nil {
		return core.Profile{}, err
	}

	existing, err := a.credentials.GetCredentialByEmail(ctx, email)
	if err != nil {
		return core.Profile{}, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return core.Profile{}, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	profile := core.Profile{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
	}
	if err := a.profiles.UpsertProfile(ctx, profile); err != nil {
		return core.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	cred := store.Credential{
		UserID:       profile.ID,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := a.credentials.CreateCredential(ctx, cred); err != nil {
		return core.Profile{}, fmt.Errorf("create credential: %w", err)
	}
	return profile, nil
}

// Authenticate verifies email and password and returns the member profile.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (core.Profile, error) {
	cred, err := a.credentials.GetCredentialByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return core.Profile{}, fmt.Errorf("look up credential: %w", err)
	}
	if cred == nil {
		return core.Profile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return core.Profile{}, ErrInvalidCredentials
	}

	profile, err := a.profiles.GetProfile(ctx, cred.UserID)
	if err != nil {
		return core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
