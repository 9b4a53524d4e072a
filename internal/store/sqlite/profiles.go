package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

// GetProfile retrieves a household member's profile by id.
func (s *Store) GetProfile(ctx context.Context, id string) (core.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, duty_days, last_notified
		FROM profiles
		WHERE id = ?
	`, id)

	p, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return core.Profile{}, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Profile{}, store.Unavailable(err)
	}
	return p, nil
}

// UpsertProfile inserts the profile or, when the id already exists, updates
// its email and name. Duty days and notification state are managed by their
// own operations and left untouched on update.
func (s *Store) UpsertProfile(ctx context.Context, p core.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, name, duty_days)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, name = excluded.name
	`, p.ID, p.Email, p.Name, dutyDaysToText(p.DutyDays))
	if err != nil {
		return store.Unavailable(fmt.Errorf("upsert profile: %w", err))
	}
	return nil
}

// ReplaceDutyDays overwrites the member's market-duty weekday selection.
func (s *Store) ReplaceDutyDays(ctx context.Context, userID string, days []time.Weekday) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET duty_days = ? WHERE id = ?
	`, dutyDaysToText(days), userID)
	if err != nil {
		return store.Unavailable(fmt.Errorf("update duty days: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Unavailable(fmt.Errorf("update duty days: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("profile %s: %w", userID, store.ErrNotFound)
	}
	return nil
}

// ListProfilesWithDutyDays returns every member that has at least one duty
// weekday selected. Used by the reminder worker to scan for upcoming duties.
func (s *Store) ListProfilesWithDutyDays(ctx context.Context) ([]core.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, duty_days, last_notified
		FROM profiles
		WHERE duty_days != ''
	`)
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("query profiles: %w", err))
	}
	defer rows.Close()

	var out []core.Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, store.Unavailable(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(fmt.Errorf("iterate profiles: %w", err))
	}
	return out, nil
}

// SetLastNotified records when the member last received a duty reminder.
func (s *Store) SetLastNotified(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET last_notified = ? WHERE id = ?
	`, at.UTC().Format(time.RFC3339), userID)
	if err != nil {
		return store.Unavailable(fmt.Errorf("update last notified: %w", err))
	}
	return nil
}

func scanProfile(scan func(...any) error) (core.Profile, error) {
	var (
		p        core.Profile
		days     string
		notified sql.NullString
	)
	if err := scan(&p.ID, &p.Email, &p.Name, &days, &notified); err != nil {
		if err == sql.ErrNoRows {
			return core.Profile{}, err
		}
		return core.Profile{}, fmt.Errorf("scan profile: %w", err)
	}

	parsed, err := dutyDaysFromText(days)
	if err != nil {
		return core.Profile{}, err
	}
	p.DutyDays = parsed

	if notified.Valid && notified.String != "" {
		t, err := time.Parse(time.RFC3339, notified.String)
		if err != nil {
			return core.Profile{}, fmt.Errorf("parse last notified: %w", err)
		}
		p.LastNotified = t
	}
	return p, nil
}
