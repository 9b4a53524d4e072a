// Package memory provides an in-memory store backend. It backs the
// DATA_BACKEND=memory mode used in development and is the fixture store
// for service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

type syncState struct {
	createdAt time.Time
	syncedAt  *time.Time
}

// Store keeps all records in process memory. Safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	expenses      map[string]core.Expense
	contributions map[string]core.Contribution
	profiles      map[string]core.Profile
	credentials   map[string]store.Credential // keyed by email
	sync          map[string]syncState        // keyed by record id

	// insertion order per owner, newest first
	expenseOrder      map[string][]string
	contributionOrder map[string][]string
}

var (
	_ store.ExpenseStore      = (*Store)(nil)
	_ store.ContributionStore = (*Store)(nil)
	_ store.ProfileStore      = (*Store)(nil)
	_ store.CredentialStore   = (*Store)(nil)
	_ store.LedgerSyncStore   = (*Store)(nil)
)

func New() *Store {
	return &Store{
		expenses:          make(map[string]core.Expense),
		contributions:     make(map[string]core.Contribution),
		profiles:          make(map[string]core.Profile),
		credentials:       make(map[string]store.Credential),
		sync:              make(map[string]syncState),
		expenseOrder:      make(map[string][]string),
		contributionOrder: make(map[string][]string),
	}
}

func (s *Store) ListExpensesByOwner(_ context.Context, ownerID string) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, id := range s.expenseOrder[ownerID] {
		out = append(out, s.expenses[id])
	}
	sortByDateDesc(out, func(e core.Expense) core.Date { return e.Date })
	return out, nil
}

func (s *Store) AppendExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses[e.ID] = e
	s.expenseOrder[e.UserID] = append([]string{e.ID}, s.expenseOrder[e.UserID]...)
	s.sync[e.ID] = syncState{createdAt: time.Now()}
	return nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	return e, nil
}

func (s *Store) ListContributionsByOwner(_ context.Context, ownerID string) ([]core.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Contribution
	for _, id := range s.contributionOrder[ownerID] {
		out = append(out, s.contributions[id])
	}
	sortByDateDesc(out, func(c core.Contribution) core.Date { return c.Date })
	return out, nil
}

func (s *Store) AppendContribution(_ context.Context, c core.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contributions[c.ID] = c
	s.contributionOrder[c.UserID] = append([]string{c.ID}, s.contributionOrder[c.UserID]...)
	s.sync[c.ID] = syncState{createdAt: time.Now()}
	return nil
}

func (s *Store) GetContribution(_ context.Context, id string) (core.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contributions[id]
	if !ok {
		return core.Contribution{}, fmt.Errorf("contribution %s: %w", id, store.ErrNotFound)
	}
	return c, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return core.Profile{}, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	return p, nil
}

func (s *Store) UpsertProfile(_ context.Context, p core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[p.ID]; ok {
		existing.Email = p.Email
		existing.Name = p.Name
		s.profiles[p.ID] = existing
		return nil
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *Store) ReplaceDutyDays(_ context.Context, userID string, days []time.Weekday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, store.ErrNotFound)
	}
	p.DutyDays = append([]time.Weekday(nil), days...)
	s.profiles[userID] = p
	return nil
}

func (s *Store) ListProfilesWithDutyDays(_ context.Context) ([]core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Profile
	for _, p := range s.profiles {
		if len(p.DutyDays) > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SetLastNotified(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, store.ErrNotFound)
	}
	p.LastNotified = at
	s.profiles[userID] = p
	return nil
}

func (s *Store) CreateCredential(_ context.Context, c store.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[c.Email] = c
	return nil
}

func (s *Store) GetCredentialByEmail(_ context.Context, email string) (*store.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.credentials[email]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) ListPendingLedgerSync(_ context.Context, kind store.RecordKind, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pending struct {
		id        string
		createdAt time.Time
	}
	var all []pending
	for id, st := range s.sync {
		if st.syncedAt != nil {
			continue
		}
		if !s.hasKind(kind, id) {
			continue
		}
		all = append(all, pending{id: id, createdAt: st.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })

	var ids []string
	for _, p := range all {
		if len(ids) == limit {
			break
		}
		ids = append(ids, p.id)
	}
	return ids, nil
}

func (s *Store) MarkLedgerSynced(_ context.Context, kind store.RecordKind, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasKind(kind, id) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	st, ok := s.sync[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	st.syncedAt = &at
	s.sync[id] = st
	return nil
}

func (s *Store) hasKind(kind store.RecordKind, id string) bool {
	switch kind {
	case store.KindExpense:
		_, ok := s.expenses[id]
		return ok
	case store.KindContribution:
		_, ok := s.contributions[id]
		return ok
	}
	return false
}

func sortByDateDesc[T any](records []T, date func(T) core.Date) {
	sort.SliceStable(records, func(i, j int) bool {
		return date(records[i]).After(date(records[j]).Time)
	})
}
