// Package memory is an in-process ledger used in development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"messbook/internal/core"
	"messbook/internal/ledger"
)

// Row is one mirrored record.
type Row struct {
	Owner core.Profile
	Kind  string
	ID    string
}

type Store struct {
	mu   sync.Mutex
	rows []Row
}

var _ ledger.Writer = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendExpense(_ context.Context, owner core.Profile, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{Owner: owner, Kind: "expense", ID: e.ID})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) AppendContribution(_ context.Context, owner core.Profile, c core.Contribution) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{Owner: owner, Kind: "contribution", ID: c.ID})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything mirrored so far.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}
