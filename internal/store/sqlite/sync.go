package sqlite

import (
	"context"
	"fmt"
	"time"

	"messbook/internal/store"
)

// ListPendingLedgerSync returns up to limit records that have not yet been
// mirrored to the household ledger, oldest first.
func (s *Store) ListPendingLedgerSync(ctx context.Context, kind store.RecordKind, limit int) ([]string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id FROM %s
		WHERE synced_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`, table), limit)
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("query pending sync: %w", err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, store.Unavailable(fmt.Errorf("scan pending sync: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(fmt.Errorf("iterate pending sync: %w", err))
	}
	return ids, nil
}

// MarkLedgerSynced stamps the record as mirrored to the ledger.
func (s *Store) MarkLedgerSynced(ctx context.Context, kind store.RecordKind, id string, at time.Time) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET synced_at = ? WHERE id = ?
	`, table), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return store.Unavailable(fmt.Errorf("mark synced: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Unavailable(fmt.Errorf("mark synced: %w", err))
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return nil
}

func tableFor(kind store.RecordKind) (string, error) {
	switch kind {
	case store.KindExpense:
		return "expenses", nil
	case store.KindContribution:
		return "contributions", nil
	default:
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
}
