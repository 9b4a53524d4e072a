package service

import (
	"context"
	"fmt"
	"sort"

	"messbook/internal/core"
)

const (
	trendPoints   = 10
	activityLimit = 5

	DirectionSurplus = "surplus"
	DirectionDeficit = "deficit"
)

// TrendPoint is one expense on the spending trend, oldest first.
type TrendPoint struct {
	Date   core.Date
	Amount core.Money
}

// ActivityItem is one row of the recent-activity feed, newest first.
type ActivityItem struct {
	Kind        string
	ID          string
	Date        core.Date
	Amount      core.Money
	Description string
}

// Overview is everything the dashboard shows for one member.
type Overview struct {
	TotalExpenses      core.Money
	TotalContributions core.Money
	MonthExpenses      core.Money
	MonthContributions core.Money
	Balance            core.Money
	Direction          string

	NextDuty    core.Date
	HasNextDuty bool

	Trend    []TrendPoint
	Activity []ActivityItem

	// FetchErr is set when the numbers were computed from a stale record
	// snapshot because the store could not be refreshed.
	FetchErr error
}

// DashboardService assembles the member's overview from records and duty
// schedule.
type DashboardService struct {
	records *RecordService
	duty    *DutyService
}

func NewDashboardService(records *RecordService, duty *DutyService) *DashboardService {
	return &DashboardService{records: records, duty: duty}
}

// Overview computes totals, the current month's flows, the running balance,
// the next market duty, the spending trend, and recent activity. today
// anchors the month filter and the duty search.
func (s *DashboardService) Overview(ctx context.Context, userID string, today core.Date) (Overview, error) {
	expenseSnap, err := s.records.ListExpenses(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard expenses: %w", err)
	}
	contributionSnap, err := s.records.ListContributions(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard contributions: %w", err)
	}
	expenses, contributions := expenseSnap.Records, contributionSnap.Records

	ov := Overview{
		TotalExpenses:      core.TotalOf(expenses),
		TotalContributions: core.TotalOf(contributions),
		MonthExpenses:      core.TotalOf(core.FilterMonth(expenses, today)),
		MonthContributions: core.TotalOf(core.FilterMonth(contributions, today)),
		Balance:            core.Balance(contributions, expenses),
		Trend:              trend(expenses),
		Activity:           recentActivity(expenses, contributions),
	}
	ov.FetchErr = expenseSnap.FetchErr
	if ov.FetchErr == nil {
		ov.FetchErr = contributionSnap.FetchErr
	}
	if ov.Balance.Cents < 0 {
		ov.Direction = DirectionDeficit
	} else {
		ov.Direction = DirectionSurplus
	}

	next, ok, err := s.duty.NextDuty(ctx, userID, today)
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard duty: %w", err)
	}
	ov.NextDuty = next
	ov.HasNextDuty = ok

	return ov, nil
}

// trend picks the member's last spendings and orders them oldest first so
// the chart reads left to right.
func trend(expenses []core.Expense) []TrendPoint {
	n := len(expenses)
	if n > trendPoints {
		n = trendPoints
	}
	out := make([]TrendPoint, 0, n)
	// expenses arrive newest first; walk the window backwards
	for i := n - 1; i >= 0; i-- {
		out = append(out, TrendPoint{Date: expenses[i].Date, Amount: expenses[i].Amount})
	}
	return out
}

// recentActivity merges both record kinds and keeps the newest few.
func recentActivity(expenses []core.Expense, contributions []core.Contribution) []ActivityItem {
	items := make([]ActivityItem, 0, len(expenses)+len(contributions))
	for _, e := range expenses {
		items = append(items, ActivityItem{
			Kind:        "expense",
			ID:          e.ID,
			Date:        e.Date,
			Amount:      e.Amount,
			Description: e.Description,
		})
	}
	for _, c := range contributions {
		items = append(items, ActivityItem{
			Kind:        "contribution",
			ID:          c.ID,
			Date:        c.Date,
			Amount:      c.Amount,
			Description: string(c.Status),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date.Time)
	})
	if len(items) > activityLimit {
		items = items[:activityLimit]
	}
	return items
}
