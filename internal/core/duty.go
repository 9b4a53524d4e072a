package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// MaxDutyDays is the most weekdays a single member may take per week.
const MaxDutyDays = 2

var (
	ErrUnknownWeekday  = errors.New("unknown weekday name")
	ErrTooManyDutyDays = errors.New("at most two duty days per week")
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a weekday name case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return time.Sunday, ErrUnknownWeekday
	}
	return d, nil
}

// ParseDutyDays parses a list of weekday names into a deduplicated schedule,
// enforcing the two-day cap.
func ParseDutyDays(names []string) ([]time.Weekday, error) {
	seen := map[time.Weekday]struct{}{}
	var days []time.Weekday
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) > MaxDutyDays {
		return nil, ErrTooManyDutyDays
	}
	return days, nil
}

// ValidateDutyDays checks the two-day cap on an already-parsed schedule.
func ValidateDutyDays(days []time.Weekday) error {
	seen := map[time.Weekday]struct{}{}
	for _, d := range days {
		seen[d] = struct{}{}
	}
	if len(seen) > MaxDutyDays {
		return ErrTooManyDutyDays
	}
	return nil
}

// ToggleDutyDay adds day to the schedule if absent and removes it if present.
// Adding a third day is refused: the schedule is returned unchanged.
func ToggleDutyDay(days []time.Weekday, day time.Weekday) []time.Weekday {
	for i, d := range days {
		if d == day {
			return append(append([]time.Weekday(nil), days[:i]...), days[i+1:]...)
		}
	}
	if len(days) >= MaxDutyDays {
		return days
	}
	return append(append([]time.Weekday(nil), days...), day)
}

// NextDutyDate finds the nearest upcoming date whose weekday is in days,
// counting from today. Weekday indices run Sunday=0 through Saturday=6.
//
// The search within the current 7-day cycle is strictly "later than today's
// index": when today itself is a duty day it does not count, and only
// resurfaces via the wrap-around branch if it is also the earliest duty
// weekday. That asymmetry is a deliberate behavioral contract, not a bug to
// fix here.
//
// An empty schedule yields ok=false; that is an ordinary outcome, not an
// error.
func NextDutyDate(days []time.Weekday, today Date) (Date, bool) {
	if len(days) == 0 {
		return Date{}, false
	}

	idx := make([]int, 0, len(days))
	for _, d := range days {
		idx = append(idx, int(d))
	}
	sort.Ints(idx)

	cur := int(today.Weekday())
	for _, i := range idx {
		if i > cur {
			return DateOf(today.AddDate(0, 0, i-cur)), true
		}
	}
	// Nothing left this cycle: wrap to the earliest duty weekday of the next.
	return DateOf(today.AddDate(0, 0, 7-cur+idx[0])), true
}
