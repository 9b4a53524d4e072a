package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

// ListContributionsByOwner returns all of ownerID's contributions, most
// recent first.
func (s *Store) ListContributionsByOwner(ctx context.Context, ownerID string) ([]core.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount_cents, status
		FROM contributions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
	`, ownerID)
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("query contributions: %w", err))
	}
	defer rows.Close()

	var out []core.Contribution
	for rows.Next() {
		c, err := scanContribution(rows.Scan)
		if err != nil {
			return nil, store.Unavailable(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(fmt.Errorf("iterate contributions: %w", err))
	}
	return out, nil
}

// AppendContribution persists a fully populated contribution record.
func (s *Store) AppendContribution(ctx context.Context, c core.Contribution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contributions (id, user_id, date, amount_cents, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, dateToText(c.Date), c.Amount.Cents, string(c.Status),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return store.Unavailable(fmt.Errorf("insert contribution: %w", err))
	}
	return nil
}

// GetContribution retrieves a single contribution by id.
func (s *Store) GetContribution(ctx context.Context, id string) (core.Contribution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, amount_cents, status
		FROM contributions
		WHERE id = ?
	`, id)

	c, err := scanContribution(row.Scan)
	if err == sql.ErrNoRows {
		return core.Contribution{}, fmt.Errorf("contribution %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Contribution{}, store.Unavailable(err)
	}
	return c, nil
}

func scanContribution(scan func(...any) error) (core.Contribution, error) {
	var (
		c      core.Contribution
		date   string
		status string
	)
	if err := scan(&c.ID, &c.UserID, &date, &c.Amount.Cents, &status); err != nil {
		if err == sql.ErrNoRows {
			return core.Contribution{}, err
		}
		return core.Contribution{}, fmt.Errorf("scan contribution: %w", err)
	}

	d, err := dateFromText(date)
	if err != nil {
		return core.Contribution{}, err
	}
	c.Date = d
	c.Status = core.ContributionStatus(status)
	return c, nil
}
