// Package store defines the persistence ports the services are written
// against, plus the error contract every implementation follows.
package store

import (
	"context"
	"time"

	"messbook/internal/core"
)

// RecordKind distinguishes record tables in sync messages and sweep queries.
type RecordKind string

const (
	KindExpense      RecordKind = "expense"
	KindContribution RecordKind = "contribution"
)

type (
	// ExpenseStore persists expense records. Lists are ordered by date
	// descending (most recent first), matching the mirror's fetch order.
	ExpenseStore interface {
		ListExpensesByOwner(ctx context.Context, ownerID string) ([]core.Expense, error)
		AppendExpense(ctx context.Context, e core.Expense) error
		GetExpense(ctx context.Context, id string) (core.Expense, error)
	}

	// ContributionStore persists contribution records, ordered like expenses.
	ContributionStore interface {
		ListContributionsByOwner(ctx context.Context, ownerID string) ([]core.Contribution, error)
		AppendContribution(ctx context.Context, c core.Contribution) error
		GetContribution(ctx context.Context, id string) (core.Contribution, error)
	}

	// ProfileStore persists member profiles. ReplaceDutyDays is a wholesale
	// overwrite of the duty set; there is no incremental update.
	ProfileStore interface {
		GetProfile(ctx context.Context, id string) (core.Profile, error)
		UpsertProfile(ctx context.Context, p core.Profile) error
		ReplaceDutyDays(ctx context.Context, ownerID string, days []time.Weekday) error
		ListProfilesWithDutyDays(ctx context.Context) ([]core.Profile, error)
		SetLastNotified(ctx context.Context, ownerID string, at time.Time) error
	}

	// Credential is a login record for password sign-in.
	Credential struct {
		UserID       string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// CredentialStore persists password credentials, keyed by email.
	// A nil Credential with nil error means "not found".
	CredentialStore interface {
		CreateCredential(ctx context.Context, c Credential) error
		GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	}

	// LedgerSyncStore tracks which records have been mirrored to the shared
	// household ledger.
	LedgerSyncStore interface {
		ListPendingLedgerSync(ctx context.Context, kind RecordKind, limit int) ([]string, error)
		MarkLedgerSynced(ctx context.Context, kind RecordKind, id string, at time.Time) error
	}
)
