package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "messbook.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProfile(t *testing.T, s *Store, id, email string) {
	t.Helper()
	if err := s.UpsertProfile(context.Background(), core.Profile{ID: id, Email: email}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")

	exp := core.Expense{
		ID:          "e1",
		UserID:      "u1",
		Date:        core.NewDate(2024, time.March, 10),
		Amount:      core.Money{Cents: 1550},
		Items:       []string{"rice", "lentils"},
		Description: "weekly groceries",
	}
	if err := s.AppendExpense(ctx, exp); err != nil {
		t.Fatalf("AppendExpense: %v", err)
	}

	got, err := s.GetExpense(ctx, "e1")
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Amount.Cents != 1550 || len(got.Items) != 2 || got.Description != "weekly groceries" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Date.Equal(exp.Date.Time) {
		t.Errorf("date = %v, want %v", got.Date, exp.Date)
	}
}

func TestListExpensesOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")

	for i, day := range []int{5, 20, 12} {
		e := core.Expense{
			ID:     "e" + string(rune('a'+i)),
			UserID: "u1",
			Date:   core.NewDate(2024, time.March, day),
			Amount: core.Money{Cents: 100},
		}
		if err := s.AppendExpense(ctx, e); err != nil {
			t.Fatalf("AppendExpense: %v", err)
		}
	}

	list, err := s.ListExpensesByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListExpensesByOwner: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d expenses, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Date.After(list[i-1].Date.Time) {
			t.Errorf("list not sorted newest first: %v before %v", list[i-1].Date, list[i].Date)
		}
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetExpense(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestContributionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")

	c := core.Contribution{
		ID:     "c1",
		UserID: "u1",
		Date:   core.NewDate(2024, time.March, 11),
		Amount: core.Money{Cents: 5000},
		Status: core.StatusPending,
	}
	if err := s.AppendContribution(ctx, c); err != nil {
		t.Fatalf("AppendContribution: %v", err)
	}

	got, err := s.GetContribution(ctx, "c1")
	if err != nil {
		t.Fatalf("GetContribution: %v", err)
	}
	if got.Status != core.StatusPending || got.Amount.Cents != 5000 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	list, err := s.ListContributionsByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListContributionsByOwner: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d contributions, want 1", len(list))
	}
}

func TestProfileDutyDays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")
	seedProfile(t, s, "u2", "u2@example.com")

	days := []time.Weekday{time.Monday, time.Friday}
	if err := s.ReplaceDutyDays(ctx, "u1", days); err != nil {
		t.Fatalf("ReplaceDutyDays: %v", err)
	}

	p, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(p.DutyDays) != 2 || p.DutyDays[0] != time.Monday || p.DutyDays[1] != time.Friday {
		t.Errorf("duty days = %v", p.DutyDays)
	}

	withDuty, err := s.ListProfilesWithDutyDays(ctx)
	if err != nil {
		t.Fatalf("ListProfilesWithDutyDays: %v", err)
	}
	if len(withDuty) != 1 || withDuty[0].ID != "u1" {
		t.Errorf("profiles with duty = %+v", withDuty)
	}

	// Clearing the set removes the profile from the reminder scan.
	if err := s.ReplaceDutyDays(ctx, "u1", nil); err != nil {
		t.Fatalf("ReplaceDutyDays clear: %v", err)
	}
	withDuty, err = s.ListProfilesWithDutyDays(ctx)
	if err != nil {
		t.Fatalf("ListProfilesWithDutyDays: %v", err)
	}
	if len(withDuty) != 0 {
		t.Errorf("expected no profiles with duty, got %+v", withDuty)
	}
}

func TestReplaceDutyDaysUnknownProfile(t *testing.T) {
	s := newTestStore(t)
	err := s.ReplaceDutyDays(context.Background(), "nope", []time.Weekday{time.Monday})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertProfileKeepsDutyDays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")
	if err := s.ReplaceDutyDays(ctx, "u1", []time.Weekday{time.Tuesday}); err != nil {
		t.Fatalf("ReplaceDutyDays: %v", err)
	}

	// A later sign-in upserts the profile again; the duty set must survive.
	if err := s.UpsertProfile(ctx, core.Profile{ID: "u1", Email: "u1@example.com", Name: "Asha"}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	p, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Name != "Asha" {
		t.Errorf("name = %q, want Asha", p.Name)
	}
	if len(p.DutyDays) != 1 || p.DutyDays[0] != time.Tuesday {
		t.Errorf("duty days = %v, want [Tuesday]", p.DutyDays)
	}
}

func TestSetLastNotified(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")

	at := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
	if err := s.SetLastNotified(ctx, "u1", at); err != nil {
		t.Fatalf("SetLastNotified: %v", err)
	}

	p, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if !p.LastNotified.Equal(at) {
		t.Errorf("last notified = %v, want %v", p.LastNotified, at)
	}
}

func TestCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")

	cred, err := s.GetCredentialByEmail(ctx, "u1@example.com")
	if err != nil {
		t.Fatalf("GetCredentialByEmail: %v", err)
	}
	if cred != nil {
		t.Fatalf("expected nil credential before creation, got %+v", cred)
	}

	if err := s.CreateCredential(ctx, store.Credential{
		UserID:       "u1",
		Email:        "u1@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateCredential: %v", err)
	}

	cred, err = s.GetCredentialByEmail(ctx, "u1@example.com")
	if err != nil {
		t.Fatalf("GetCredentialByEmail: %v", err)
	}
	if cred == nil || cred.UserID != "u1" || cred.PasswordHash != "hash" {
		t.Errorf("credential = %+v", cred)
	}
}

func TestPendingLedgerSync(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", "u1@example.com")

	for _, id := range []string{"e1", "e2"} {
		e := core.Expense{ID: id, UserID: "u1", Date: core.NewDate(2024, time.March, 10), Amount: core.Money{Cents: 100}}
		if err := s.AppendExpense(ctx, e); err != nil {
			t.Fatalf("AppendExpense: %v", err)
		}
	}

	pending, err := s.ListPendingLedgerSync(ctx, store.KindExpense, 10)
	if err != nil {
		t.Fatalf("ListPendingLedgerSync: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %v, want 2 ids", pending)
	}

	if err := s.MarkLedgerSynced(ctx, store.KindExpense, "e1", time.Now().UTC()); err != nil {
		t.Fatalf("MarkLedgerSynced: %v", err)
	}

	pending, err = s.ListPendingLedgerSync(ctx, store.KindExpense, 10)
	if err != nil {
		t.Fatalf("ListPendingLedgerSync: %v", err)
	}
	if len(pending) != 1 || pending[0] != "e2" {
		t.Errorf("pending after mark = %v, want [e2]", pending)
	}

	if _, err := s.ListPendingLedgerSync(ctx, store.RecordKind("bogus"), 10); err == nil {
		t.Error("expected error for unknown record kind")
	}
}
