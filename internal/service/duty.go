package service

import (
	"context"
	"fmt"
	"time"

	"messbook/internal/core"
	"messbook/internal/store"
)

// DutyService manages each member's market-duty weekday selection.
type DutyService struct {
	profiles store.ProfileStore
}

func NewDutyService(profiles store.ProfileStore) *DutyService {
	return &DutyService{profiles: profiles}
}

// DutyDays returns the member's selected weekdays.
func (s *DutyService) DutyDays(ctx context.Context, userID string) ([]time.Weekday, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p.DutyDays, nil
}

// ReplaceDutyDays parses and stores a new weekday selection. At most
// core.MaxDutyDays weekdays are accepted.
func (s *DutyService) ReplaceDutyDays(ctx context.Context, userID string, names []string) ([]time.Weekday, error) {
	days, err := core.ParseDutyDays(names)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.ReplaceDutyDays(ctx, userID, days); err != nil {
		return nil, fmt.Errorf("store duty days: %w", err)
	}
	return days, nil
}

// ToggleDutyDay flips one weekday in the member's selection and stores the
// result. Selecting a third day is refused and leaves the selection
// unchanged.
func (s *DutyService) ToggleDutyDay(ctx context.Context, userID, name string) ([]time.Weekday, error) {
	day, err := core.ParseWeekday(name)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	days := core.ToggleDutyDay(p.DutyDays, day)
	if len(days) == len(p.DutyDays) && len(days) >= core.MaxDutyDays {
		// Third day refused; selection unchanged.
		return days, core.ErrTooManyDutyDays
	}
	if err := s.profiles.ReplaceDutyDays(ctx, userID, days); err != nil {
		return nil, fmt.Errorf("store duty days: %w", err)
	}
	return days, nil
}

// NextDuty computes the member's next market-duty date after today. The
// second return is false when no weekdays are selected.
func (s *DutyService) NextDuty(ctx context.Context, userID string, today core.Date) (core.Date, bool, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return core.Date{}, false, fmt.Errorf("load profile: %w", err)
	}
	next, ok := core.NextDutyDate(p.DutyDays, today)
	return next, ok, nil
}
