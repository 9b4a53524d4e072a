package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending   ContributionStatus = "pending"
	StatusCompleted ContributionStatus = "completed"
)

type (
	// ContributionStatus is the settlement state of a contribution. Records are
	// created pending; nothing in this system flips them to completed.
	ContributionStatus string

	// Date is a calendar date. The time-of-day portion is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a purchase made for the mess, owned by exactly one member.
	Expense struct {
		ID          string
		UserID      string
		Date        Date
		Amount      Money
		Items       []string
		Description string
	}

	// Contribution is money a member paid into the shared pool.
	Contribution struct {
		ID     string
		UserID string
		Date   Date
		Amount Money
		Status ContributionStatus
	}

	// Profile is a member's account record. DutyDays holds at most two
	// weekdays. LastNotified is written only by the reminder worker.
	Profile struct {
		ID           string
		Email        string
		Name         string
		DutyDays     []time.Weekday
		LastNotified time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyOwner    = errors.New("missing owning user")
	ErrInvalidStatus = errors.New("invalid contribution status")
	ErrEmptyEmail    = errors.New("empty email")
)

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameMonth reports whether d falls in the same calendar month and year as ref.
// The comparison is by date components, not an elapsed-time window.
func (d Date) SameMonth(ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s ContributionStatus) Validate() error {
	switch s {
	case StatusPending, StatusCompleted:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyOwner
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	for _, it := range e.Items {
		if strings.TrimSpace(it) == "" {
			return errors.New("empty item name")
		}
	}
	return nil
}

func (c Contribution) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrEmptyOwner
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	return c.Status.Validate()
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmptyEmail
	}
	return ValidateDutyDays(p.DutyDays)
}
