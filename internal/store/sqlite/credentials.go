package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"messbook/internal/store"
)

// CreateCredential stores a member's password credential.
func (s *Store) CreateCredential(ctx context.Context, c store.Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, c.UserID, c.Email, c.PasswordHash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return store.Unavailable(fmt.Errorf("insert credential: %w", err))
	}
	return nil
}

// GetCredentialByEmail looks up a credential by email. A missing credential
// is reported as (nil, nil) so callers can distinguish "unknown email" from
// a storage failure.
func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (*store.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, email, password_hash
		FROM credentials
		WHERE email = ?
	`, email)

	var c store.Credential
	err := row.Scan(&c.UserID, &c.Email, &c.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("scan credential: %w", err))
	}
	return &c, nil
}
