package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

// ListExpensesByOwner returns all of ownerID's expenses, most recent first.
func (s *Store) ListExpensesByOwner(ctx context.Context, ownerID string) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, amount_cents, items, description
		FROM expenses
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
	`, ownerID)
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("query expenses: %w", err))
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, store.Unavailable(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(fmt.Errorf("iterate expenses: %w", err))
	}
	return out, nil
}

// AppendExpense persists a fully populated expense record.
func (s *Store) AppendExpense(ctx context.Context, e core.Expense) error {
	items, err := json.Marshal(e.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, date, amount_cents, items, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, dateToText(e.Date), e.Amount.Cents, string(items), e.Description,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return store.Unavailable(fmt.Errorf("insert expense: %w", err))
	}
	return nil
}

// GetExpense retrieves a single expense by id.
func (s *Store) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, amount_cents, items, description
		FROM expenses
		WHERE id = ?
	`, id)

	e, err := scanExpense(row.Scan)
	if err == sql.ErrNoRows {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, store.Unavailable(err)
	}
	return e, nil
}

func scanExpense(scan func(...any) error) (core.Expense, error) {
	var (
		e         core.Expense
		date      string
		itemsJSON string
	)
	if err := scan(&e.ID, &e.UserID, &date, &e.Amount.Cents, &itemsJSON, &e.Description); err != nil {
		if err == sql.ErrNoRows {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	d, err := dateFromText(date)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = d

	if err := json.Unmarshal([]byte(itemsJSON), &e.Items); err != nil {
		return core.Expense{}, fmt.Errorf("decode items: %w", err)
	}
	return e, nil
}
