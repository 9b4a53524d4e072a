// Package worker holds the background processors: ledger sync and duty
// reminders.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"messbook/internal/amqp"
	"messbook/internal/ledger"
	"messbook/internal/store"
)

// LedgerSyncStores is the storage surface the sync worker needs.
type LedgerSyncStores interface {
	store.ExpenseStore
	store.ContributionStore
	store.ProfileStore
	store.LedgerSyncStore
}

// LedgerSyncWorker mirrors records from the database to the household
// ledger.
type LedgerSyncWorker struct {
	stores    LedgerSyncStores
	writer    ledger.Writer
	batchSize int
}

func NewLedgerSyncWorker(stores LedgerSyncStores, writer ledger.Writer, batchSize int) *LedgerSyncWorker {
	return &LedgerSyncWorker{
		stores:    stores,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *LedgerSyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "kind", msg.Kind, "id", msg.ID)
	return w.syncRecord(ctx, store.RecordKind(msg.Kind), msg.ID)
}

// ProcessPending mirrors records that never got a message, a backup in case
// AMQP deliveries are lost.
func (w *LedgerSyncWorker) ProcessPending(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog at worker startup, recovering
// from missed messages or downtime. Uses a larger batch than the periodic
// pass.
func (w *LedgerSyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *LedgerSyncWorker) processPending(ctx context.Context, batch int) error {
	total := 0
	errs := 0
	for _, kind := range []store.RecordKind{store.KindExpense, store.KindContribution} {
		ids, err := w.stores.ListPendingLedgerSync(ctx, kind, batch)
		if err != nil {
			return fmt.Errorf("list pending %s sync: %w", kind, err)
		}
		total += len(ids)
		for _, id := range ids {
			if err := w.syncRecord(ctx, kind, id); err != nil {
				slog.ErrorContext(ctx, "Failed to sync pending record", "kind", kind, "id", id, "error", err)
				errs++
			}
		}
	}
	if total > 0 {
		slog.InfoContext(ctx, "Pending sync pass completed", "total", total, "errors", errs)
	}
	return nil
}

func (w *LedgerSyncWorker) syncRecord(ctx context.Context, kind store.RecordKind, id string) error {
	var (
		ownerID string
		ref     string
	)

	switch kind {
	case store.KindExpense:
		e, err := w.stores.GetExpense(ctx, id)
		if err != nil {
			return fmt.Errorf("get expense: %w", err)
		}
		ownerID = e.UserID
		owner, err := w.stores.GetProfile(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("get owner profile: %w", err)
		}
		ref, err = w.writer.AppendExpense(ctx, owner, e)
		if err != nil {
			return fmt.Errorf("append expense to ledger: %w", err)
		}
	case store.KindContribution:
		c, err := w.stores.GetContribution(ctx, id)
		if err != nil {
			return fmt.Errorf("get contribution: %w", err)
		}
		ownerID = c.UserID
		owner, err := w.stores.GetProfile(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("get owner profile: %w", err)
		}
		ref, err = w.writer.AppendContribution(ctx, owner, c)
		if err != nil {
			return fmt.Errorf("append contribution to ledger: %w", err)
		}
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}

	if err := w.stores.MarkLedgerSynced(ctx, kind, id, time.Now()); err != nil {
		// The ledger write succeeded; the record will be retried and the
		// ledger may get a duplicate row, which is preferable to a miss.
		slog.ErrorContext(ctx, "Failed to mark record synced", "kind", kind, "id", id, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Record mirrored to ledger",
		"kind", kind,
		"id", id,
		"owner", ownerID,
		"ledger_ref", ref)
	return nil
}
