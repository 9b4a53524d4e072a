package core

import (
	"testing"
	"time"
)

func expense(year int, month time.Month, day int, cents int64) Expense {
	return Expense{
		ID:     "e",
		UserID: "u1",
		Date:   NewDate(year, month, day),
		Amount: Money{Cents: cents},
	}
}

func contribution(year int, month time.Month, day int, cents int64) Contribution {
	return Contribution{
		ID:     "c",
		UserID: "u1",
		Date:   NewDate(year, month, day),
		Amount: Money{Cents: cents},
		Status: StatusPending,
	}
}

func TestTotalOf(t *testing.T) {
	tests := []struct {
		name    string
		records []Expense
		want    int64
	}{
		{
			name:    "empty sequence totals zero",
			records: nil,
			want:    0,
		},
		{
			name: "sums fractional amounts",
			records: []Expense{
				expense(2024, time.March, 1, 1000),
				expense(2024, time.March, 2, 550),
			},
			want: 1550,
		},
		{
			name: "single record",
			records: []Expense{
				expense(2024, time.March, 1, 12345),
			},
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalOf(tt.records)
			if got.Cents != tt.want {
				t.Errorf("TotalOf() = %d cents, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestFilterMonth(t *testing.T) {
	records := []Expense{
		expense(2024, time.March, 31, 100),
		expense(2024, time.March, 1, 200),
		expense(2024, time.February, 29, 300),
		expense(2023, time.March, 15, 400), // same month, different year
		expense(2024, time.April, 1, 500),
	}

	got := FilterMonth(records, NewDate(2024, time.March, 15))
	if len(got) != 2 {
		t.Fatalf("FilterMonth() returned %d records, want 2", len(got))
	}
	// Original order is preserved.
	if got[0].Date.Day() != 31 || got[1].Date.Day() != 1 {
		t.Errorf("FilterMonth() order = [%d, %d], want [31, 1]", got[0].Date.Day(), got[1].Date.Day())
	}
}

func TestFilterMonth_Empty(t *testing.T) {
	if got := FilterMonth[Expense](nil, NewDate(2024, time.March, 15)); len(got) != 0 {
		t.Errorf("FilterMonth(nil) = %v, want empty", got)
	}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name          string
		contributions []Contribution
		expenses      []Expense
		want          int64
	}{
		{
			name: "surplus",
			contributions: []Contribution{
				contribution(2024, time.March, 1, 30000),
				contribution(2024, time.March, 5, 20000),
			},
			expenses: []Expense{
				expense(2024, time.March, 2, 35000),
			},
			want: 15000,
		},
		{
			name: "deficit is negative",
			contributions: []Contribution{
				contribution(2024, time.March, 1, 1000),
			},
			expenses: []Expense{
				expense(2024, time.March, 2, 2500),
			},
			want: -1500,
		},
		{
			name: "both empty",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Balance(tt.contributions, tt.expenses)
			if got.Cents != tt.want {
				t.Errorf("Balance() = %d cents, want %d", got.Cents, tt.want)
			}
		})
	}
}
