// Package service orchestrates household finance operations across the
// store, the in-process mirrors, and the sync queue.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"messbook/internal/core"
	"messbook/internal/mirror"
	"messbook/internal/store"
)

// SyncPublisher enqueues records for mirroring to the household ledger.
// Satisfied by *amqp.Client.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, kind, id string) error
}

// RecordService owns expense and contribution records. Reads are served
// from per-collection mirrors so a flaky store never loses data a member
// already saw; writes go to the store first, then update the mirror
// optimistically and enqueue a ledger sync.
type RecordService struct {
	expenses      store.ExpenseStore
	contributions store.ContributionStore
	publisher     SyncPublisher

	mu                  sync.Mutex // guards the mirror maps
	expenseMirrors      map[string]*mirror.Collection[core.Expense]
	contributionMirrors map[string]*mirror.Collection[core.Contribution]
	registries          map[string]*mirror.Registry
}

func NewRecordService(expenses store.ExpenseStore, contributions store.ContributionStore, publisher SyncPublisher) *RecordService {
	s := &RecordService{
		expenses:            expenses,
		contributions:       contributions,
		publisher:           publisher,
		expenseMirrors:      make(map[string]*mirror.Collection[core.Expense]),
		contributionMirrors: make(map[string]*mirror.Collection[core.Contribution]),
		registries:          make(map[string]*mirror.Registry),
	}
	return s
}

// ownerRegistry groups one member's mirrors so sign-out resets exactly
// that member's snapshots. Callers must hold s.mu.
func (s *RecordService) ownerRegistry(ownerID string) *mirror.Registry {
	r, ok := s.registries[ownerID]
	if !ok {
		r = mirror.NewRegistry()
		s.registries[ownerID] = r
	}
	return r
}

func (s *RecordService) expenseMirror(ownerID string) *mirror.Collection[core.Expense] {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.expenseMirrors[ownerID]
	if !ok {
		c = mirror.NewCollection(s.expenses.ListExpensesByOwner)
		s.expenseMirrors[ownerID] = c
		s.ownerRegistry(ownerID).Add(c)
	}
	return c
}

func (s *RecordService) contributionMirror(ownerID string) *mirror.Collection[core.Contribution] {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributionMirrors[ownerID]
	if !ok {
		c = mirror.NewCollection(s.contributions.ListContributionsByOwner)
		s.contributionMirrors[ownerID] = c
		s.ownerRegistry(ownerID).Add(c)
	}
	return c
}

// Snapshot is one list read. FetchErr is set when the store refresh failed
// and Records is the last good (stale) data, so callers can show the
// records and the degraded state together.
type Snapshot[T any] struct {
	Records  []T
	FetchErr error
}

// Stale reports whether Records survived a failed refresh.
func (s Snapshot[T]) Stale() bool { return s.FetchErr != nil }

// ListExpenses returns the member's expenses, most recent first. When the
// store is unavailable the last good snapshot is served with the fetch
// error attached.
func (s *RecordService) ListExpenses(ctx context.Context, ownerID string) (Snapshot[core.Expense], error) {
	m := s.expenseMirror(ownerID)
	if err := m.Refresh(ctx, ownerID); err != nil {
		if !m.Loaded() {
			return Snapshot[core.Expense]{}, fmt.Errorf("list expenses: %w", err)
		}
		slog.WarnContext(ctx, "Serving stale expense snapshot", "owner", ownerID, "error", err)
		return Snapshot[core.Expense]{Records: m.Snapshot(), FetchErr: err}, nil
	}
	return Snapshot[core.Expense]{Records: m.Snapshot()}, nil
}

// ListContributions returns the member's contributions, most recent first.
func (s *RecordService) ListContributions(ctx context.Context, ownerID string) (Snapshot[core.Contribution], error) {
	m := s.contributionMirror(ownerID)
	if err := m.Refresh(ctx, ownerID); err != nil {
		if !m.Loaded() {
			return Snapshot[core.Contribution]{}, fmt.Errorf("list contributions: %w", err)
		}
		slog.WarnContext(ctx, "Serving stale contribution snapshot", "owner", ownerID, "error", err)
		return Snapshot[core.Contribution]{Records: m.Snapshot(), FetchErr: err}, nil
	}
	return Snapshot[core.Contribution]{Records: m.Snapshot()}, nil
}

// CreateExpense validates and stores a new expense for the member, then
// enqueues a ledger sync. A sync publish failure never fails the request.
func (s *RecordService) CreateExpense(ctx context.Context, ownerID string, date core.Date, amount core.Money, items []string, description string) (core.Expense, error) {
	e := core.Expense{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Date:        date,
		Amount:      amount,
		Items:       items,
		Description: description,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.expenses.AppendExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.expenseMirror(ownerID).Prepend(e)
	s.publishSync(ctx, string(store.KindExpense), e.ID)
	return e, nil
}

// CreateContribution stores a new contribution. New contributions always
// start pending; completion happens outside the app.
func (s *RecordService) CreateContribution(ctx context.Context, ownerID string, date core.Date, amount core.Money) (core.Contribution, error) {
	c := core.Contribution{
		ID:     uuid.NewString(),
		UserID: ownerID,
		Date:   date,
		Amount: amount,
		Status: core.StatusPending,
	}
	if err := c.Validate(); err != nil {
		return core.Contribution{}, err
	}
	if err := s.contributions.AppendContribution(ctx, c); err != nil {
		return core.Contribution{}, fmt.Errorf("save contribution: %w", err)
	}

	s.contributionMirror(ownerID).Prepend(c)
	s.publishSync(ctx, string(store.KindContribution), c.ID)
	return c, nil
}

func (s *RecordService) publishSync(ctx context.Context, kind, id string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping ledger sync", "kind", kind, "id", id)
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, kind, id); err != nil {
		// The record is saved locally; the worker catches up from the
		// pending-sync index.
		slog.ErrorContext(ctx, "Failed to publish sync message", "kind", kind, "id", id, "error", err)
	}
}

// Discard drops the member's cached snapshots. Called on sign-out so a
// late fetch cannot leak records into the next session.
func (s *RecordService) Discard(ownerID string) {
	s.mu.Lock()
	r, ok := s.registries[ownerID]
	s.mu.Unlock()
	if ok {
		r.ResetAll()
	}
}
